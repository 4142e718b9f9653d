// Package memory implements the stores as mutex-guarded process-local maps.
// This backing is only correct for a single server instance; multi-instance
// deployments must use the redis stores. The same implementations double as
// test fakes.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/avetisk/authgate/internal/model"
)

var _ model.OTPStore = (*OTPStore)(nil)

type OTPStore struct {
	mu      sync.Mutex
	entries map[string]model.PendingOTP
	now     func() time.Time
}

func NewOTPStore() *OTPStore {
	return &OTPStore{
		entries: make(map[string]model.PendingOTP),
		now:     time.Now,
	}
}

func (s *OTPStore) Put(ctx context.Context, otp model.PendingOTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[otp.PhoneKey] = otp
	return nil
}

func (s *OTPStore) Get(ctx context.Context, phoneKey string) (model.PendingOTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	otp, ok := s.entries[phoneKey]
	if !ok {
		return model.PendingOTP{}, model.ErrNotFound
	}
	return otp, nil
}

func (s *OTPStore) Delete(ctx context.Context, phoneKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, phoneKey)
	return nil
}

func (s *OTPStore) IncrementAttempts(ctx context.Context, phoneKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	otp, ok := s.entries[phoneKey]
	if !ok {
		return 0, model.ErrNotFound
	}
	otp.AttemptCount++
	s.entries[phoneKey] = otp
	return otp.AttemptCount, nil
}

// Sweep removes expired entries. Without a periodic sweep the map grows
// unbounded on codes that are issued but never verified.
func (s *OTPStore) Sweep(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, otp := range s.entries {
		if otp.Expired(now) {
			delete(s.entries, key)
		}
	}
	return nil
}
