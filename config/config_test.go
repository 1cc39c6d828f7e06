package config

import (
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("KEYCLOAK_CLIENT_ID", "sso-demo-client")
	t.Setenv("KEYCLOAK_CLIENT_SECRET", "secret")
	t.Setenv("SESSION_SECRET", "carrier-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Issuer != "http://localhost:8080/realms/sso-demo" {
		t.Errorf("Unexpected issuer: %s", cfg.Issuer)
	}
	if cfg.AuthorizationEndpoint != "http://localhost:8080/realms/sso-demo/protocol/openid-connect/auth" {
		t.Errorf("Unexpected authorization endpoint: %s", cfg.AuthorizationEndpoint)
	}
	if cfg.TokenEndpoint != "http://localhost:8080/realms/sso-demo/protocol/openid-connect/token" {
		t.Errorf("Unexpected token endpoint: %s", cfg.TokenEndpoint)
	}
	if cfg.RedirectURL() != "http://localhost:3000/callback" {
		t.Errorf("Unexpected redirect URL: %s", cfg.RedirectURL())
	}
	if cfg.PostLogoutRedirectURL() != "http://localhost:3000/" {
		t.Errorf("Unexpected post-logout redirect URL: %s", cfg.PostLogoutRedirectURL())
	}
	if cfg.PublicClientID != "sso-demo-client" {
		t.Errorf("Expected public client id to default to client id, got %s", cfg.PublicClientID)
	}
}

func TestLoadSplitEndpoints(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KEYCLOAK_SERVER_URL", "http://keycloak.internal:8080")
	t.Setenv("KEYCLOAK_PUBLIC_URL", "https://auth.example.com")
	t.Setenv("KEYCLOAK_REALM", "acme")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// The issuer follows the public base: it is the identity asserted in
	// tokens regardless of which network path a call takes.
	if cfg.Issuer != "https://auth.example.com/realms/acme" {
		t.Errorf("Unexpected issuer: %s", cfg.Issuer)
	}

	// Browser-facing endpoints use the public base
	for _, endpoint := range []string{cfg.AuthorizationEndpoint, cfg.EndSessionEndpoint} {
		if !strings.HasPrefix(endpoint, "https://auth.example.com/realms/acme/") {
			t.Errorf("Expected public base for browser endpoint, got %s", endpoint)
		}
	}

	// Server-facing endpoints use the internal base
	for _, endpoint := range []string{cfg.TokenEndpoint, cfg.UserinfoEndpoint, cfg.JWKSEndpoint} {
		if !strings.HasPrefix(endpoint, "http://keycloak.internal:8080/realms/acme/") {
			t.Errorf("Expected internal base for server endpoint, got %s", endpoint)
		}
	}
}

func TestLoadEndpointOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KEYCLOAK_TOKEN_URL", "http://keycloak-alt:9090/custom/token")
	t.Setenv("KEYCLOAK_JWKS_URL", "http://keycloak-alt:9090/custom/certs")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.TokenEndpoint != "http://keycloak-alt:9090/custom/token" {
		t.Errorf("Token endpoint override not applied: %s", cfg.TokenEndpoint)
	}
	if cfg.JWKSEndpoint != "http://keycloak-alt:9090/custom/certs" {
		t.Errorf("JWKS endpoint override not applied: %s", cfg.JWKSEndpoint)
	}
	// Unrelated endpoints keep their defaults
	if cfg.UserinfoEndpoint != "http://localhost:8080/realms/sso-demo/protocol/openid-connect/userinfo" {
		t.Errorf("Userinfo endpoint unexpectedly changed: %s", cfg.UserinfoEndpoint)
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		missing string
	}{
		{"missing client id", "KEYCLOAK_CLIENT_ID"},
		{"missing client secret", "KEYCLOAK_CLIENT_SECRET"},
		{"missing session secret", "SESSION_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.missing, "")

			if _, err := Load(); err == nil {
				t.Errorf("Expected error when %s is missing", tt.missing)
			}
		})
	}
}

func TestLoadMalformedBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KEYCLOAK_PUBLIC_URL", "not a url")

	if _, err := Load(); err == nil {
		t.Error("Expected error for malformed public base URL")
	}

	t.Setenv("KEYCLOAK_PUBLIC_URL", "ftp://example.com")
	if _, err := Load(); err == nil {
		t.Error("Expected error for unsupported URL scheme")
	}
}

func TestLoadPublicClientIDOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KEYCLOAK_PUBLIC_CLIENT_ID", "browser-client")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.PublicClientID != "browser-client" {
		t.Errorf("Expected public client id override, got %s", cfg.PublicClientID)
	}
}
