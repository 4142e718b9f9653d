package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avetisk/authgate/internal/mocks"
	"github.com/avetisk/authgate/internal/model"
	"github.com/avetisk/authgate/internal/repository/memory"
	"github.com/avetisk/authgate/internal/testutil"
)

func newSessionService() *Session {
	return NewSession(memory.NewSessionStore(), testutil.MakeNoopLogger())
}

func TestSession_CreateAndValidate(t *testing.T) {
	ctx := context.Background()
	svc := newSessionService()
	userID := uuid.New()

	session, err := svc.Create(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, session.Token, sessionTokenBytes*2) // hex-encoded
	assert.Equal(t, userID, session.UserID)
	assert.WithinDuration(t, session.CreatedAt.Add(model.SessionDuration), session.ExpiresAt, time.Second)

	got, err := svc.Validate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
}

func TestSession_ValidateUnknownToken(t *testing.T) {
	svc := newSessionService()

	_, err := svc.Validate(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSession_FixedExpiration(t *testing.T) {
	ctx := context.Background()
	svc := newSessionService()

	session, err := svc.Create(ctx, uuid.New())
	require.NoError(t, err)

	// Validation never extends the stored expiry.
	got, err := svc.Validate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.ExpiresAt, got.ExpiresAt)

	svc.now = func() time.Time { return session.ExpiresAt.Add(time.Second) }

	_, err = svc.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, model.ErrSessionExpired)

	// The lapsed session was deleted lazily.
	svc.now = time.Now
	_, err = svc.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSession_DestroyInvalidatesToken(t *testing.T) {
	ctx := context.Background()
	svc := newSessionService()
	userID := uuid.New()

	session, err := svc.Create(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, svc.Destroy(ctx, userID))

	// Every subsequent validation fails with not-found.
	for i := 0; i < 3; i++ {
		_, err = svc.Validate(ctx, session.Token)
		assert.ErrorIs(t, err, model.ErrNotFound)
	}
}

func TestSession_NewLoginReplacesToken(t *testing.T) {
	ctx := context.Background()
	svc := newSessionService()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID)
	require.NoError(t, err)
	second, err := svc.Create(ctx, userID)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, first.Token)
	assert.ErrorIs(t, err, model.ErrNotFound)

	got, err := svc.Validate(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
}

func TestSession_TokenUniqueness(t *testing.T) {
	ctx := context.Background()
	svc := newSessionService()

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		session, err := svc.Create(ctx, uuid.New())
		require.NoError(t, err)

		_, dup := seen[session.Token]
		require.False(t, dup, "token collision after %d creations", i)
		seen[session.Token] = struct{}{}
	}
}

func TestSession_StorageErrorIsNotNotFound(t *testing.T) {
	ctx := context.Background()
	store := &mocks.SessionStore{}
	svc := NewSession(store, testutil.MakeNoopLogger())

	storeErr := model.ErrStorage
	store.On("GetByToken", mock.Anything, "token").Return(model.Session{}, storeErr)

	_, err := svc.Validate(ctx, "token")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrStorage)
	assert.NotErrorIs(t, err, model.ErrNotFound)
}
