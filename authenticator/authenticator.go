package authenticator

import (
	"context"
	"errors"

	"github.com/blogem/sso-demo/models"
)

// Flow and provider errors. Handlers translate these into user-facing
// outcomes; raw transport errors never leave this package unwrapped.
var (
	ErrStateMismatch       = errors.New("authorization state mismatch")
	ErrTokenExchangeFailed = errors.New("token exchange failed")
	ErrIDTokenInvalid      = errors.New("id_token verification failed")
	ErrRefreshFailed       = errors.New("token refresh failed")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// Provider interface abstracts the OIDC provider operations
type Provider interface {
	// AuthCodeURL builds the authorization redirect for a login attempt.
	// The state, nonce and PKCE verifier must be fresh per attempt.
	AuthCodeURL(state, nonce, verifier string) string

	// Exchange trades an authorization code for tokens, verifies the
	// returned id_token (issuer, audience, signature, nonce) and extracts
	// the identity claims.
	Exchange(ctx context.Context, code, nonce, verifier string) (*models.TokenBundle, *models.IdentityClaims, error)

	// Refresh performs a refresh_token grant. On failure the caller must
	// treat the session as terminated, not retry.
	Refresh(ctx context.Context, refreshToken string) (*models.TokenBundle, error)

	// EndSessionURL builds the provider logout redirect so the provider-side
	// session terminates together with the local one.
	EndSessionURL(idTokenHint string) string
}
