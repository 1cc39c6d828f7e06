package models

import "time"

// TokenBundle holds the tokens obtained from the OIDC provider. It is owned
// by the session store; presentation code only ever sees the projected
// Session.
type TokenBundle struct {
	AccessToken  string    `json:"at"`
	RefreshToken string    `json:"rt,omitempty"`
	IDToken      string    `json:"it,omitempty"`
	ExpiresAt    time.Time `json:"exp"`
}

// IsExpired reports whether the bundle is expired at the given instant.
// Equality counts as expired.
func (b TokenBundle) IsExpired(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}

// ExpiresWithin reports whether the bundle expires at or before now+skew.
// Used to refresh slightly ahead of actual expiry.
func (b TokenBundle) ExpiresWithin(now time.Time, skew time.Duration) bool {
	return b.IsExpired(now.Add(skew))
}

// IdentityClaims is the identity extracted from the provider at
// token-exchange time. It is not re-fetched per request.
type IdentityClaims struct {
	Subject           string `json:"sub"`
	Name              string `json:"name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
	Picture           string `json:"picture,omitempty"`
}

// DisplayName returns the best available human-readable name, falling back
// from name to preferred_username to email.
func (c IdentityClaims) DisplayName() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.PreferredUsername != "":
		return c.PreferredUsername
	default:
		return c.Email
	}
}

// SessionUser is the user part of the externally visible session.
type SessionUser struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// Session is the externally visible projection of the token state. It is
// recomputed on every read and never independently mutated.
type Session struct {
	User        SessionUser `json:"user"`
	AccessToken string      `json:"accessToken,omitempty"`
	IDToken     string      `json:"idToken,omitempty"`
	ExpiresAt   time.Time   `json:"expiresAt"`
}

// ProjectSession derives the public Session from internal token state.
// The provider-internal subject is deliberately not exposed; absent optional
// claims stay empty.
func ProjectSession(bundle TokenBundle, claims IdentityClaims) Session {
	return Session{
		User: SessionUser{
			Name:  claims.DisplayName(),
			Email: claims.Email,
			Image: claims.Picture,
		},
		AccessToken: bundle.AccessToken,
		IDToken:     bundle.IDToken,
		ExpiresAt:   bundle.ExpiresAt,
	}
}
