package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"gitea.com/go-chi/session"
	"golang.org/x/oauth2"

	"github.com/blogem/sso-demo/authenticator"
	"github.com/blogem/sso-demo/models"
	"github.com/blogem/sso-demo/services"
	"github.com/blogem/sso-demo/sessions"
)

// AuthController drives the login, callback and logout flows
type AuthController struct {
	store    *sessions.Store
	services *services.Services
}

// NewAuthController creates a new auth controller
func NewAuthController(store *sessions.Store, services *services.Services) *AuthController {
	return &AuthController{
		store:    store,
		services: services,
	}
}

// Login initiates the authentication flow: fresh state, nonce and PKCE
// verifier are stored in the server-side flow session, then the browser is
// sent to the provider's authorization endpoint.
func (ac *AuthController) Login(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := generateRandomValue()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		nonce, err := generateRandomValue()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		verifier := oauth2.GenerateVerifier()

		// Save the flow state in the session to validate in the callback.
		// The browser only holds a random session id, so none of these
		// values can be forged client-side.
		sess := session.GetSession(r)
		sess.Set("state", state)
		sess.Set("nonce", nonce)
		sess.Set("pkce_verifier", verifier)

		http.Redirect(w, r, auth.AuthCodeURL(state, nonce, verifier), http.StatusTemporaryRedirect)
	}
}

// Callback handles the redirect back from the provider: it validates the
// state, exchanges the code for tokens and issues the session carrier.
func (ac *AuthController) Callback(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)

		// Verify state before anything else. A mismatch aborts the flow;
		// the single-use code is never sent to the token endpoint.
		storedState := sess.Get("state")
		if storedState == nil {
			http.Error(w, "State not found in session", http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("state") != storedState.(string) {
			ac.services.Audit.Record(r, models.AuthEventLoginFailed, "", "state mismatch")
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		// The provider reports user-denied or misconfigured requests via an
		// error query parameter instead of a code.
		if errCode := r.URL.Query().Get("error"); errCode != "" {
			ac.services.Audit.Record(r, models.AuthEventLoginFailed, "", "provider error: "+errCode)
			http.Error(w, "Login failed, please retry", http.StatusUnauthorized)
			return
		}

		nonce, _ := sess.Get("nonce").(string)
		verifier, _ := sess.Get("pkce_verifier").(string)
		if nonce == "" || verifier == "" {
			http.Error(w, "Login flow state incomplete, please retry", http.StatusBadRequest)
			return
		}

		// Exchange the code for tokens. The provider validates the PKCE
		// verifier; we validate the returned id_token.
		bundle, claims, err := auth.Exchange(r.Context(), r.URL.Query().Get("code"), nonce, verifier)
		if err != nil {
			ac.services.Audit.Record(r, models.AuthEventLoginFailed, "", err.Error())
			if errors.Is(err, authenticator.ErrProviderUnavailable) {
				http.Error(w, "Identity provider unavailable, please retry", http.StatusBadGateway)
				return
			}
			http.Error(w, "Login failed, please retry", http.StatusUnauthorized)
			return
		}

		if err := ac.store.Issue(w, *bundle, *claims); err != nil {
			http.Error(w, "Failed to establish session: "+err.Error(), http.StatusInternalServerError)
			return
		}

		ac.services.Audit.Record(r, models.AuthEventLogin, claims.Email, "")

		// Clear the one-time flow state
		sess.Delete("state")
		sess.Delete("nonce")
		sess.Delete("pkce_verifier")

		redirect := "/"
		if target, ok := sess.Get("redirect_after_login").(string); ok && target != "" {
			redirect = target
			sess.Delete("redirect_after_login")
		}
		http.Redirect(w, r, redirect, http.StatusSeeOther)
	}
}

// Logout clears the local session carrier, then sends the browser to the
// provider's end-session endpoint so both sessions terminate together.
// Logging out without a session still clears and redirects.
func (ac *AuthController) Logout(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, claims, ok := ac.store.Peek(r)

		// Local invalidation happens before the provider redirect is
		// handed back.
		ac.store.Clear(w)

		var idTokenHint string
		if ok {
			idTokenHint = bundle.IDToken
			ac.services.Audit.Record(r, models.AuthEventLogout, claims.Email, "")
		}

		http.Redirect(w, r, auth.EndSessionURL(idTokenHint), http.StatusTemporaryRedirect)
	}
}

// generateRandomValue generates a random value suitable for the state and
// nonce parameters
func generateRandomValue() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
