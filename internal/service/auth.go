package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avetisk/authgate/internal/logger"
	"github.com/avetisk/authgate/internal/model"
	"github.com/avetisk/authgate/internal/phone"
)

// VerifyError carries the OTP verification outcome for failed attempts.
// Handlers collapse notFound and mismatch into one client-facing message so
// responses never reveal whether a phone key exists.
type VerifyError struct {
	Result model.VerifyResult
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("verification failed: %s", e.Result)
}

// Auth orchestrates the login flow: verify the submitted code, resolve or
// create the user for the phone key, and mint a session.
type Auth struct {
	otp      *OTP
	sessions *Session
	users    model.UserStore
	logger   *logger.Logger
}

func NewAuth(otp *OTP, sessions *Session, users model.UserStore, logger *logger.Logger) *Auth {
	return &Auth{
		otp:      otp,
		sessions: sessions,
		users:    users,
		logger:   logger,
	}
}

// Login verifies the code for the raw phone number and, on success, returns
// the user and a fresh session. First-time numbers get an account created
// on the spot.
func (a *Auth) Login(ctx context.Context, rawPhone, code string) (model.User, model.Session, error) {
	phoneKey, err := phone.Normalize(rawPhone)
	if err != nil {
		return model.User{}, model.Session{}, fmt.Errorf("%w: %s", model.ErrValidation, err.Error())
	}

	a.logger.Debug("Auth service: verifying code", "phone", phoneKey)

	result, err := a.otp.Verify(ctx, phoneKey, code)
	if err != nil {
		return model.User{}, model.Session{}, fmt.Errorf("failed to verify code: %w", err)
	}
	if result != model.VerifyOK {
		return model.User{}, model.Session{}, &VerifyError{Result: result}
	}

	user, err := a.findOrCreateUser(ctx, phoneKey)
	if err != nil {
		return model.User{}, model.Session{}, err
	}

	session, err := a.sessions.Create(ctx, user.ID)
	if err != nil {
		return model.User{}, model.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	a.logger.Info("Auth service: login completed", "user_id", user.ID)

	return user, session, nil
}

// Logout destroys the user's active session. It succeeds even when no
// session exists server-side.
func (a *Auth) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := a.sessions.Destroy(ctx, userID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

func (a *Auth) findOrCreateUser(ctx context.Context, phoneKey string) (model.User, error) {
	user, err := a.users.GetByPhone(ctx, phoneKey)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by phone: %w", err)
	}

	now := time.Now()
	user, err = a.users.Create(ctx, model.User{
		ID:        uuid.New(),
		Phone:     phoneKey,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"phone", phoneKey,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user created", "user_id", user.ID, "phone", phoneKey)

	return user, nil
}
