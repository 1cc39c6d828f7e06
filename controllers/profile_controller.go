package controllers

import (
	"net/http"

	"github.com/blogem/sso-demo/models"
	"github.com/blogem/sso-demo/services"
	"github.com/blogem/sso-demo/userctx"
)

// ProfileController handles the signed-in profile page
type ProfileController struct {
	services *services.Services
}

// NewProfileController creates a new profile controller
func NewProfileController(services *services.Services) *ProfileController {
	return &ProfileController{services: services}
}

// Index handles GET /profile (behind RequireAuth)
func (c *ProfileController) Index(w http.ResponseWriter, r *http.Request) {
	current := userctx.GetSession(r.Context())
	if current == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	activity, err := c.services.Audit.RecentActivity(current.User.Email, 10)
	if err != nil {
		http.Error(w, "Failed to load recent activity: "+err.Error(), http.StatusInternalServerError)
		return
	}

	templateData := struct {
		Title    string
		Session  *models.Session
		Activity []models.AuthEvent
	}{
		Title:    "Profile",
		Session:  current,
		Activity: activity,
	}

	renderTemplate(w, "profile", "templates/profile.html", templateData)
}
