package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/avetisk/authgate/internal/model"
)

var _ model.SessionStore = (*SessionStore)(nil)

const (
	sessionKeyPrefix   = "session:token:"
	userTokenKeyPrefix = "session:user:"
)

// SessionStore keeps sessions in Redis, one hash per token plus a
// user-to-token index enforcing the single-session-per-user policy.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Put(ctx context.Context, session model.Session) error {
	// Replace semantics: drop the user's previous token before indexing the
	// new one so the old bearer credential dies immediately.
	prev, err := s.client.Get(ctx, userTokenKeyPrefix+session.UserID.String()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return storageErr("failed to look up previous session", err)
	}

	ttl := time.Until(session.ExpiresAt)

	pipe := s.client.TxPipeline()
	if prev != "" {
		pipe.Del(ctx, sessionKeyPrefix+prev)
	}
	pipe.HSet(ctx, sessionKeyPrefix+session.Token,
		"user_id", session.UserID.String(),
		"created_at", session.CreatedAt.UnixNano(),
		"expires_at", session.ExpiresAt.UnixNano(),
	)
	pipe.Expire(ctx, sessionKeyPrefix+session.Token, ttl)
	pipe.Set(ctx, userTokenKeyPrefix+session.UserID.String(), session.Token, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return storageErr("failed to store session", err)
	}

	return nil
}

func (s *SessionStore) GetByToken(ctx context.Context, token string) (model.Session, error) {
	fields, err := s.client.HGetAll(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return model.Session{}, storageErr("failed to get session", err)
	}
	if len(fields) == 0 {
		return model.Session{}, model.ErrNotFound
	}

	userID, err := uuid.Parse(fields["user_id"])
	if err != nil {
		return model.Session{}, storageErr("failed to parse session user id", err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return model.Session{}, storageErr("failed to parse session created_at", err)
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return model.Session{}, storageErr("failed to parse session expires_at", err)
	}

	return model.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Unix(0, createdAt),
		ExpiresAt: time.Unix(0, expiresAt),
	}, nil
}

func (s *SessionStore) TokenByUser(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.client.Get(ctx, userTokenKeyPrefix+userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return "", model.ErrNotFound
	}
	if err != nil {
		return "", storageErr("failed to get token by user", err)
	}
	return token, nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	token, err := s.TokenByUser(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+token)
	pipe.Del(ctx, userTokenKeyPrefix+userID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return storageErr("failed to delete session by user", err)
	}

	return nil
}

func (s *SessionStore) DeleteByToken(ctx context.Context, token string) error {
	session, err := s.GetByToken(ctx, token)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+token)
	pipe.Del(ctx, userTokenKeyPrefix+session.UserID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return storageErr("failed to delete session by token", err)
	}

	return nil
}
