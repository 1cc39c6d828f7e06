package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"gitea.com/go-chi/session"
	"github.com/blogem/sso-demo/authenticator"
	"github.com/blogem/sso-demo/config"
	"github.com/blogem/sso-demo/controllers"
	"github.com/blogem/sso-demo/database"
	authmiddleware "github.com/blogem/sso-demo/middleware"
	"github.com/blogem/sso-demo/repositories"
	"github.com/blogem/sso-demo/services"
	"github.com/blogem/sso-demo/sessions"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Resolve provider and application configuration; missing credentials
	// are fatal here, before anything starts serving
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize database for the auth event audit trail
	dbPath := "sso_demo.db"
	if err := database.InitializeDatabase(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	db := database.GetDB()

	// Initialize repositories and services
	repos := repositories.NewRepositories(db)
	srvs := services.NewServices(repos)

	// Initialize the OIDC provider client
	auth, err := authenticator.NewKeycloakProvider(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize OIDC provider: %v", err)
	}

	// Initialize the session carrier codec and store
	codec, err := sessions.NewCodec(cfg.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to initialize session codec: %v", err)
	}
	store := sessions.NewStore(codec, auth, srvs.Audit, cfg.UseHTTPS)

	// Initialize controllers
	ctrl := controllers.NewControllers(srvs, store)

	// Set up router
	r, err := setupRouter(ctrl, auth, store, cfg)
	if err != nil {
		log.Fatalf("Failed to setup router: %v", err)
	}

	fmt.Printf("🚀 SSO Demo starting on port %s\n", cfg.Port)
	fmt.Printf("📂 Visit: %s\n", cfg.AppURL)
	fmt.Printf("🔑 Provider issuer: %s\n", cfg.Issuer)

	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}

// setupRouter configures all routes
func setupRouter(ctrl *controllers.Controllers, auth authenticator.Provider, store *sessions.Store, cfg *config.Config) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second)) // 60 second timeout for OAuth callbacks
	r.Use(middleware.Compress(5))

	// Flow session middleware: holds per-login state/nonce/PKCE verifier
	// server-side, keyed by a random cookie, for the duration of one flow
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "sso_flow",
		Secure:         cfg.UseHTTPS,
		Gclifetime:     600, // abandoned login flows age out
		Maxlifetime:    600,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	// PUBLIC ROUTES (no authentication required)
	r.Get("/", ctrl.Home.Index)
	r.Get("/login", ctrl.Auth.Login(auth))
	r.Get("/callback", ctrl.Auth.Callback(auth))
	r.Get("/logout", ctrl.Auth.Logout(auth))
	r.Get("/api/session", ctrl.Home.Session)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "sso-demo"}`)
	})

	// PROTECTED ROUTES (authentication required)
	r.Group(func(r chi.Router) {
		r.Use(authmiddleware.RequireAuth(store))

		r.Get("/profile", ctrl.Profile.Index)
	})

	return r, nil
}
