// Package httpctx carries the authenticated user identity through request
// contexts.
package httpctx

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Manager sets and retrieves the authenticated user ID on request contexts.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// SetUserID returns a child context carrying the user ID.
func (m *Manager) SetUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID retrieves the user ID set by the auth middleware. The boolean is
// false on requests that never passed authentication.
func (m *Manager) GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}
