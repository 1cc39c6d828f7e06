package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/blogem/sso-demo/models"
	"github.com/blogem/sso-demo/sessions"
)

// HomeController handles the public pages and the session API
type HomeController struct {
	store *sessions.Store
}

// NewHomeController creates a new home controller
func NewHomeController(store *sessions.Store) *HomeController {
	return &HomeController{store: store}
}

// Index handles GET / - shows the landing page or the signed-in view
func (c *HomeController) Index(w http.ResponseWriter, r *http.Request) {
	current := c.store.Current(w, r)

	templateData := struct {
		Title   string
		Session *models.Session
	}{
		Title:   "SSO Demo",
		Session: current,
	}

	renderTemplate(w, "home", "templates/home.html", templateData)
}

// Session handles GET /api/session - the machine-readable view of the
// current session
func (c *HomeController) Session(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	current := c.store.Current(w, r)
	if current == nil {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"})
		return
	}

	json.NewEncoder(w).Encode(current)
}
