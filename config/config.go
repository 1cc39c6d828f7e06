package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Config holds the resolved OIDC provider endpoints and application settings.
// It is read-only after Load and safe for concurrent use.
type Config struct {
	// Provider identity and credentials
	Issuer         string
	Realm          string
	ClientID       string
	ClientSecret   string
	PublicClientID string
	Scopes         []string

	// Endpoints. The authorization and end-session endpoints must be
	// reachable from the browser; the token, userinfo and JWKS endpoints are
	// called from this process and may point at an internal address.
	AuthorizationEndpoint string
	TokenEndpoint         string
	UserinfoEndpoint      string
	JWKSEndpoint          string
	EndSessionEndpoint    string

	// Application settings
	AppURL        string
	SessionSecret string
	Port          string
	UseHTTPS      bool
}

// Load resolves the configuration from environment variables. It fails fast
// on missing credentials or malformed base URLs so a misconfigured deployment
// never starts serving.
func Load() (*Config, error) {
	internalBase := getEnv("KEYCLOAK_SERVER_URL", "http://localhost:8080")
	publicBase := getEnv("KEYCLOAK_PUBLIC_URL", "http://localhost:8080")
	realm := getEnv("KEYCLOAK_REALM", "sso-demo")

	clientID := os.Getenv("KEYCLOAK_CLIENT_ID")
	if clientID == "" {
		return nil, errors.New("KEYCLOAK_CLIENT_ID is required")
	}
	clientSecret := os.Getenv("KEYCLOAK_CLIENT_SECRET")
	if clientSecret == "" {
		return nil, errors.New("KEYCLOAK_CLIENT_SECRET is required")
	}
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	for name, base := range map[string]string{
		"KEYCLOAK_SERVER_URL": internalBase,
		"KEYCLOAK_PUBLIC_URL": publicBase,
	} {
		if err := validateBaseURL(base); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	appURL := strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/")
	if err := validateBaseURL(appURL); err != nil {
		return nil, fmt.Errorf("invalid APP_URL: %w", err)
	}

	internalBase = strings.TrimRight(internalBase, "/")
	publicBase = strings.TrimRight(publicBase, "/")

	cfg := &Config{
		// The issuer is always the public base: it is what the provider
		// asserts in tokens, even when this process reaches it internally.
		Issuer:         fmt.Sprintf("%s/realms/%s", publicBase, realm),
		Realm:          realm,
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		PublicClientID: getEnv("KEYCLOAK_PUBLIC_CLIENT_ID", clientID),
		Scopes:         []string{"openid", "email", "profile"},

		AuthorizationEndpoint: getEnv("KEYCLOAK_AUTH_URL", endpointURL(publicBase, realm, "auth")),
		TokenEndpoint:         getEnv("KEYCLOAK_TOKEN_URL", endpointURL(internalBase, realm, "token")),
		UserinfoEndpoint:      getEnv("KEYCLOAK_USERINFO_URL", endpointURL(internalBase, realm, "userinfo")),
		JWKSEndpoint:          getEnv("KEYCLOAK_JWKS_URL", endpointURL(internalBase, realm, "certs")),
		EndSessionEndpoint:    getEnv("KEYCLOAK_LOGOUT_URL", endpointURL(publicBase, realm, "logout")),

		AppURL:        appURL,
		SessionSecret: sessionSecret,
		Port:          getEnv("PORT", "3000"),
		UseHTTPS:      os.Getenv("USE_HTTPS") == "true",
	}

	return cfg, nil
}

// RedirectURL is the authorization callback registered with the provider.
func (c *Config) RedirectURL() string {
	return c.AppURL + "/callback"
}

// PostLogoutRedirectURL is where the provider sends the browser after
// terminating its own session.
func (c *Config) PostLogoutRedirectURL() string {
	return c.AppURL + "/"
}

// endpointURL builds the conventional Keycloak endpoint path for a realm.
func endpointURL(base, realm, path string) string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/%s", base, realm, path)
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
