package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avetisk/authgate/internal/logger"
	"github.com/avetisk/authgate/internal/model"
)

const sessionTokenBytes = 32

// Session is the authoritative mapping from opaque token to user identity.
// Policy decisions, fixed here rather than left ambiguous: expiration does
// not slide, and a user holds exactly one active session (a new login
// replaces the previous token).
type Session struct {
	store  model.SessionStore
	logger *logger.Logger
	now    func() time.Time
}

func NewSession(store model.SessionStore, logger *logger.Logger) *Session {
	return &Session{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Create mints a session with a fresh high-entropy token. Any previous
// session of the user is invalidated by the store's replace semantics.
func (s *Session) Create(ctx context.Context, userID uuid.UUID) (model.Session, error) {
	token, err := randomToken()
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.now()
	session := model.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(model.SessionDuration),
	}

	if err := s.store.Put(ctx, session); err != nil {
		s.logger.Error("Session service: failed to store session",
			"user_id", userID,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("Session service: session created", "user_id", userID)

	return session, nil
}

// Validate resolves a token to its session. It returns ErrNotFound for an
// unknown token, ErrSessionExpired for a lapsed one (deleting it lazily),
// and a storage error as-is — callers must not read a storage failure as
// "not authenticated".
func (s *Session) Validate(ctx context.Context, token string) (model.Session, error) {
	session, err := s.store.GetByToken(ctx, token)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, model.ErrNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	if session.Expired(s.now()) {
		if err := s.store.DeleteByToken(ctx, token); err != nil {
			return model.Session{}, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return model.Session{}, model.ErrSessionExpired
	}

	return session, nil
}

// Destroy drops the user's active session. Validating the old token
// afterwards fails with ErrNotFound.
func (s *Session) Destroy(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	s.logger.Info("Session service: session destroyed", "user_id", userID)

	return nil
}

func randomToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
