package services

import (
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/blogem/sso-demo/models"
	"github.com/blogem/sso-demo/repositories"
)

// AuditService records authentication lifecycle events
type AuditService interface {
	// Record persists an auth event with request metadata (client IP, user
	// agent). Recording is asynchronous so it never blocks a login or
	// logout.
	Record(r *http.Request, event, userEmail, detail string)

	// RecentActivity returns the latest auth events for a user
	RecentActivity(userEmail string, limit int) ([]models.AuthEvent, error)
}

type auditService struct {
	repo repositories.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(repo repositories.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// Record persists an auth event asynchronously
func (s *auditService) Record(r *http.Request, event, userEmail, detail string) {
	entry := &models.AuthEvent{
		Event:     event,
		UserEmail: userEmail,
		Detail:    detail,
		UserAgent: r.UserAgent(),
		IPAddress: clientIPAddress(r),
	}

	go func() {
		if err := s.repo.Create(entry); err != nil {
			log.Printf("Failed to record auth event: %v", err)
		}
	}()
}

// RecentActivity returns the latest auth events for a user
func (s *auditService) RecentActivity(userEmail string, limit int) ([]models.AuthEvent, error) {
	if userEmail == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repo.ListByEmail(userEmail, limit)
}

// clientIPAddress extracts the client IP, checking X-Forwarded-For first
func clientIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header (proxy/load balancer)
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		// Take first IP if multiple
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}

	// Check X-Real-IP header
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	// Fall back to RemoteAddr, dropping the port. SplitHostPort handles
	// bracketed IPv6 addresses, which a naive colon split would mangle.
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
