package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionDuration is the fixed lifetime of a session token. Expiration does
// not slide: Validate never rewrites ExpiresAt.
const SessionDuration = 7 * 24 * time.Hour

// SessionStore persists active sessions. A user holds at most one active
// token; storing a new session for a user replaces the previous one.
type SessionStore interface {
	Put(ctx context.Context, session Session) error
	GetByToken(ctx context.Context, token string) (Session, error)
	// TokenByUser returns the active token for a user, or ErrNotFound.
	TokenByUser(ctx context.Context, userID uuid.UUID) (string, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteByToken(ctx context.Context, token string) error
}

// Session binds an opaque bearer token to a user identity.
type Session struct {
	Token     string
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its fixed expiry.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
