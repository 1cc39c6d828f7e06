package controllers

import (
	"html/template"
	"net/http"

	"github.com/blogem/sso-demo/services"
	"github.com/blogem/sso-demo/sessions"
)

// renderTemplate creates a template set and renders it with the provided data
func renderTemplate(w http.ResponseWriter, templateName string, pageTemplate string, data interface{}) error {
	tmpl := template.New(templateName)

	// Parse layout and page template
	_, err := tmpl.ParseFiles("templates/layout.html", pageTemplate)
	if err != nil {
		http.Error(w, "Failed to parse template: "+err.Error(), http.StatusInternalServerError)
		return err
	}

	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		http.Error(w, "Failed to render template: "+err.Error(), http.StatusInternalServerError)
		return err
	}

	return nil
}

// Controllers holds all controller instances
type Controllers struct {
	Auth    *AuthController
	Home    *HomeController
	Profile *ProfileController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services, store *sessions.Store) *Controllers {
	return &Controllers{
		Auth:    NewAuthController(store, services),
		Home:    NewHomeController(store),
		Profile: NewProfileController(services),
	}
}
