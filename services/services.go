package services

import (
	"github.com/blogem/sso-demo/repositories"
)

// Services holds all service instances
type Services struct {
	Audit AuditService
}

// NewServices creates and initializes all services
func NewServices(repos *repositories.Repositories) *Services {
	return &Services{
		Audit: NewAuditService(repos.Audit),
	}
}
