package memory

import (
	"context"
	"sync"
	"time"

	"github.com/avetisk/authgate/internal/model"
)

var _ model.RateLimitStore = (*RateLimitStore)(nil)

type rateEntry struct {
	count       int
	windowStart time.Time
}

type RateLimitStore struct {
	mu      sync.Mutex
	counts  map[string]rateEntry
	blocks  map[string]time.Time
	window  time.Duration
	lockout time.Duration
	now     func() time.Time
}

func NewRateLimitStore(window, lockout time.Duration) *RateLimitStore {
	return &RateLimitStore{
		counts:  make(map[string]rateEntry),
		blocks:  make(map[string]time.Time),
		window:  window,
		lockout: lockout,
		now:     time.Now,
	}
}

func (s *RateLimitStore) Hit(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.counts[key]
	if !ok || now.Sub(entry.windowStart) > s.window {
		entry = rateEntry{windowStart: now}
	}
	entry.count++
	s.counts[key] = entry
	return entry.count, nil
}

func (s *RateLimitStore) Block(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocks[key] = s.now().Add(s.lockout)
	return nil
}

func (s *RateLimitStore) BlockedFor(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.blocks[key]
	if !ok {
		return 0, nil
	}

	remaining := until.Sub(s.now())
	if remaining <= 0 {
		delete(s.blocks, key)
		return 0, nil
	}
	return int(remaining.Seconds()), nil
}
