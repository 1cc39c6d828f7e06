package authenticator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/blogem/sso-demo/config"
	"github.com/blogem/sso-demo/models"
)

// KeycloakProvider implements the Provider interface for a Keycloak-style
// OIDC provider with split internal/public endpoints.
type KeycloakProvider struct {
	provider *oidc.Provider
	config   oauth2.Config

	clientID           string
	publicClientID     string
	endSessionEndpoint string
	postLogoutRedirect string
}

// NewKeycloakProvider creates a provider from resolved configuration.
//
// Endpoints are wired explicitly instead of using OIDC discovery: discovery
// would report one set of URLs, but server-side calls (token, userinfo, JWKS)
// must travel over the internal base while browser redirects use the public
// base. Both sides still validate against the same public issuer.
func NewKeycloakProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}

	provider := (&oidc.ProviderConfig{
		IssuerURL:   cfg.Issuer,
		AuthURL:     cfg.AuthorizationEndpoint,
		TokenURL:    cfg.TokenEndpoint,
		UserInfoURL: cfg.UserinfoEndpoint,
		JWKSURL:     cfg.JWKSEndpoint,
		Algorithms:  []string{oidc.RS256},
	}).NewProvider(ctx)

	conf := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL(),
		Endpoint:     provider.Endpoint(),
		Scopes:       cfg.Scopes,
	}

	return &KeycloakProvider{
		provider:           provider,
		config:             conf,
		clientID:           cfg.ClientID,
		publicClientID:     cfg.PublicClientID,
		endSessionEndpoint: cfg.EndSessionEndpoint,
		postLogoutRedirect: cfg.PostLogoutRedirectURL(),
	}, nil
}

// AuthCodeURL returns the authorization URL for a login attempt
func (p *KeycloakProvider) AuthCodeURL(state, nonce, verifier string) string {
	return p.config.AuthCodeURL(state,
		oidc.Nonce(nonce),
		oauth2.S256ChallengeOption(verifier),
	)
}

// Exchange trades the authorization code for tokens and verifies the id_token
// before trusting any identity claim embedded in it.
func (p *KeycloakProvider) Exchange(ctx context.Context, code, nonce, verifier string) (*models.TokenBundle, *models.IdentityClaims, error) {
	oauth2Token, err := p.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, nil, exchangeError(err, ErrTokenExchangeFailed)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, nil, fmt.Errorf("%w: no id_token in token response", ErrIDTokenInvalid)
	}

	idToken, err := p.verifyIDToken(ctx, rawIDToken, nonce)
	if err != nil {
		return nil, nil, err
	}

	var claims models.IdentityClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrIDTokenInvalid, err)
	}

	// Some providers keep the id_token minimal; fill gaps from userinfo.
	if claims.Email == "" || claims.Name == "" {
		p.fillFromUserinfo(ctx, oauth2Token, &claims)
	}

	bundle := &models.TokenBundle{
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
		IDToken:      rawIDToken,
		ExpiresAt:    oauth2Token.Expiry,
	}
	if bundle.ExpiresAt.IsZero() {
		bundle.ExpiresAt = idToken.Expiry
	}

	return bundle, &claims, nil
}

// Refresh performs a refresh_token grant and returns the replacement bundle.
// When the provider rotates the refresh token, the rotated value is returned;
// the caller must discard the old one.
func (p *KeycloakProvider) Refresh(ctx context.Context, refreshToken string) (*models.TokenBundle, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", ErrRefreshFailed)
	}

	src := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	oauth2Token, err := src.Token()
	if err != nil {
		return nil, exchangeError(err, ErrRefreshFailed)
	}

	bundle := &models.TokenBundle{
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
		ExpiresAt:    oauth2Token.Expiry,
	}
	if rawIDToken, ok := oauth2Token.Extra("id_token").(string); ok {
		bundle.IDToken = rawIDToken
	}

	return bundle, nil
}

// EndSessionURL builds the provider logout redirect
func (p *KeycloakProvider) EndSessionURL(idTokenHint string) string {
	params := url.Values{}
	params.Set("post_logout_redirect_uri", p.postLogoutRedirect)
	params.Set("client_id", p.publicClientID)
	if idTokenHint != "" {
		params.Set("id_token_hint", idTokenHint)
	}
	return p.endSessionEndpoint + "?" + params.Encode()
}

// verifyIDToken checks the id_token signature, issuer, audience and nonce.
func (p *KeycloakProvider) verifyIDToken(ctx context.Context, rawIDToken, nonce string) (*oidc.IDToken, error) {
	oidcConfig := &oidc.Config{
		ClientID: p.clientID,
	}

	idToken, err := p.provider.Verifier(oidcConfig).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIDTokenInvalid, err)
	}

	if idToken.Nonce != nonce {
		return nil, fmt.Errorf("%w: nonce mismatch", ErrIDTokenInvalid)
	}

	return idToken, nil
}

// fillFromUserinfo supplements sparse id_token claims with the userinfo
// response. Failures here are not fatal: the session is still valid, only
// less complete.
func (p *KeycloakProvider) fillFromUserinfo(ctx context.Context, token *oauth2.Token, claims *models.IdentityClaims) {
	userinfo, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		log.Printf("userinfo request failed: %v", err)
		return
	}

	var extra models.IdentityClaims
	if err := userinfo.Claims(&extra); err != nil {
		log.Printf("failed to parse userinfo claims: %v", err)
		return
	}

	if claims.Email == "" {
		claims.Email = extra.Email
	}
	if claims.Name == "" {
		claims.Name = extra.Name
	}
	if claims.PreferredUsername == "" {
		claims.PreferredUsername = extra.PreferredUsername
	}
	if claims.Picture == "" {
		claims.Picture = extra.Picture
	}
}

// exchangeError translates token endpoint failures: a provider response
// (non-2xx) keeps the given kind, anything else is unavailability.
func exchangeError(err error, kind error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode != "" {
			return fmt.Errorf("%w: provider returned %q", kind, retrieveErr.ErrorCode)
		}
		return fmt.Errorf("%w: provider returned status %d", kind, retrieveErr.Response.StatusCode)
	}
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}
