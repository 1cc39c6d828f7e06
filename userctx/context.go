package userctx

import (
	"context"

	"github.com/blogem/sso-demo/models"
)

// Context key type
type contextKey string

const sessionKey contextKey = "session"

// SetSession adds the projected session to the request context
func SetSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// GetSession retrieves the projected session from the request context, or
// nil when the request is unauthenticated
func GetSession(ctx context.Context) *models.Session {
	if session, ok := ctx.Value(sessionKey).(*models.Session); ok {
		return session
	}
	return nil
}
