// Package mocks provides testify mocks for the model store interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/avetisk/authgate/internal/model"
)

type OTPStore struct {
	mock.Mock
}

func (m *OTPStore) Put(ctx context.Context, otp model.PendingOTP) error {
	args := m.Called(ctx, otp)
	return args.Error(0)
}

func (m *OTPStore) Get(ctx context.Context, phoneKey string) (model.PendingOTP, error) {
	args := m.Called(ctx, phoneKey)
	return args.Get(0).(model.PendingOTP), args.Error(1)
}

func (m *OTPStore) Delete(ctx context.Context, phoneKey string) error {
	args := m.Called(ctx, phoneKey)
	return args.Error(0)
}

func (m *OTPStore) IncrementAttempts(ctx context.Context, phoneKey string) (int, error) {
	args := m.Called(ctx, phoneKey)
	return args.Int(0), args.Error(1)
}

func (m *OTPStore) Sweep(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type SessionStore struct {
	mock.Mock
}

func (m *SessionStore) Put(ctx context.Context, session model.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionStore) GetByToken(ctx context.Context, token string) (model.Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.Session), args.Error(1)
}

func (m *SessionStore) TokenByUser(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *SessionStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *SessionStore) DeleteByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type UserStore struct {
	mock.Mock
}

func (m *UserStore) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	args := m.Called(ctx, phone)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

type RateLimitStore struct {
	mock.Mock
}

func (m *RateLimitStore) Hit(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *RateLimitStore) Block(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *RateLimitStore) BlockedFor(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

type DeliveryChannel struct {
	mock.Mock
}

func (m *DeliveryChannel) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *DeliveryChannel) SendText(ctx context.Context, to, body string) error {
	args := m.Called(ctx, to, body)
	return args.Error(0)
}
