package models

import "time"

// Auth event kinds recorded in the audit trail.
const (
	AuthEventLogin         = "login"
	AuthEventLoginFailed   = "login_failed"
	AuthEventLogout        = "logout"
	AuthEventRefreshFailed = "refresh_failed"
)

// AuthEvent represents a single authentication lifecycle event
type AuthEvent struct {
	ID        int64
	Timestamp time.Time
	Event     string
	UserEmail string
	Detail    string
	UserAgent string
	IPAddress string
}
