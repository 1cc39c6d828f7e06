package middleware

import (
	"net/http"

	"gitea.com/go-chi/session"

	"github.com/blogem/sso-demo/sessions"
	"github.com/blogem/sso-demo/userctx"
)

// RequireAuth ensures the request carries a valid session.
// If not authenticated, redirects to /login and stores the intended
// destination. The session store handles lazy expiry and refresh as part of
// the lookup.
func RequireAuth(store *sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := store.Current(w, r)
			if current == nil {
				// Store the intended destination for redirect after login
				sess := session.GetSession(r)
				sess.Set("redirect_after_login", r.URL.Path)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := userctx.SetSession(r.Context(), current)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
