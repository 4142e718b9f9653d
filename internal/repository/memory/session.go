package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/avetisk/authgate/internal/model"
)

var _ model.SessionStore = (*SessionStore)(nil)

type SessionStore struct {
	mu       sync.Mutex
	byToken  map[string]model.Session
	userIdx  map[uuid.UUID]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		byToken: make(map[string]model.Session),
		userIdx: make(map[uuid.UUID]string),
	}
}

func (s *SessionStore) Put(ctx context.Context, session model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Single active token per user: the previous one dies here.
	if prev, ok := s.userIdx[session.UserID]; ok {
		delete(s.byToken, prev)
	}

	s.byToken[session.Token] = session
	s.userIdx[session.UserID] = session.Token
	return nil
}

func (s *SessionStore) GetByToken(ctx context.Context, token string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.byToken[token]
	if !ok {
		return model.Session{}, model.ErrNotFound
	}
	return session, nil
}

func (s *SessionStore) TokenByUser(ctx context.Context, userID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.userIdx[userID]
	if !ok {
		return "", model.ErrNotFound
	}
	return token, nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.userIdx[userID]; ok {
		delete(s.byToken, token)
		delete(s.userIdx, userID)
	}
	return nil
}

func (s *SessionStore) DeleteByToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.byToken[token]; ok {
		delete(s.byToken, token)
		delete(s.userIdx, session.UserID)
	}
	return nil
}
