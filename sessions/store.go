package sessions

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/blogem/sso-demo/authenticator"
	"github.com/blogem/sso-demo/models"
)

// CookieName is the name of the session carrier cookie.
const CookieName = "sso_session"

// RefreshSkew is how far ahead of expiry a refresh is attempted, so a
// request arriving just before expiry does not hand out a token that dies
// mid-use.
const RefreshSkew = 30 * time.Second

// AuditRecorder records auth lifecycle events. Satisfied by the audit
// service; kept as a local interface so the store does not depend on the
// service layer.
type AuditRecorder interface {
	Record(r *http.Request, event, userEmail, detail string)
}

// Store owns the session carrier cookie: it issues carriers after login,
// decodes them on each request, refreshes or discards expired token bundles
// and clears the carrier on logout. It holds no per-user state; concurrent
// requests for different users never contend.
//
// Concurrent requests for the same user may race a refresh; the last
// re-issued cookie wins. Coalescing refreshes per session is a possible
// hardening, not done here.
type Store struct {
	codec    *Codec
	provider authenticator.Provider
	audit    AuditRecorder
	secure   bool

	// now is the server-trusted clock; replaceable in tests. Client
	// timestamps are never consulted.
	now func() time.Time
}

// NewStore creates a session store. audit may be nil.
func NewStore(codec *Codec, provider authenticator.Provider, audit AuditRecorder, secure bool) *Store {
	return &Store{
		codec:    codec,
		provider: provider,
		audit:    audit,
		secure:   secure,
		now:      time.Now,
	}
}

// Issue encodes the token state into a carrier cookie on the response.
func (s *Store) Issue(w http.ResponseWriter, bundle models.TokenBundle, claims models.IdentityClaims) error {
	carrier, err := s.codec.Encode(bundle, claims)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    carrier,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Current returns the session for the request, or nil when there is none.
// Expiry is checked lazily here: a bundle inside the refresh window is
// refreshed (re-issuing the cookie, adopting a rotated refresh token), an
// expired bundle that cannot be refreshed is cleared. Provider outages do
// not destroy a bundle that is still valid on its own.
func (s *Store) Current(w http.ResponseWriter, r *http.Request) *models.Session {
	bundle, claims, ok := s.Peek(r)
	if !ok {
		return nil
	}

	now := s.now()
	if bundle.ExpiresWithin(now, RefreshSkew) && bundle.RefreshToken != "" {
		refreshed, err := s.provider.Refresh(r.Context(), bundle.RefreshToken)
		switch {
		case err == nil:
			if refreshed.RefreshToken == "" {
				refreshed.RefreshToken = bundle.RefreshToken
			}
			if refreshed.IDToken == "" {
				refreshed.IDToken = bundle.IDToken
			}
			bundle = *refreshed
			if err := s.Issue(w, bundle, claims); err != nil {
				log.Printf("failed to re-issue session carrier: %v", err)
			}
		case errors.Is(err, authenticator.ErrProviderUnavailable) && !bundle.IsExpired(now):
			// Keep serving the cached bundle until it actually expires.
			log.Printf("token refresh skipped: %v", err)
		default:
			log.Printf("token refresh failed, ending session: %v", err)
			if s.audit != nil {
				s.audit.Record(r, models.AuthEventRefreshFailed, claims.Email, err.Error())
			}
			s.Clear(w)
			return nil
		}
	}

	if bundle.IsExpired(now) {
		s.Clear(w)
		return nil
	}

	session := models.ProjectSession(bundle, claims)
	return &session
}

// Peek decodes the carrier without refreshing or mutating anything. Logout
// uses it to read the identity and id_token hint before clearing.
func (s *Store) Peek(r *http.Request) (models.TokenBundle, models.IdentityClaims, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return models.TokenBundle{}, models.IdentityClaims{}, false
	}
	return s.codec.Decode(cookie.Value)
}

// Clear invalidates the carrier cookie. Subsequent decodes return nothing.
func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
