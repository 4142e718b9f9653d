package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avetisk/authgate/internal/model"
)

var _ model.RateLimitStore = (*RateLimitStore)(nil)

const (
	rateCountKeyPrefix = "ratelimit:count:"
	rateBlockKeyPrefix = "ratelimit:block:"
)

// RateLimitStore counts OTP issuance attempts per credential inside a
// rolling window and holds lockouts as TTL'd block keys.
type RateLimitStore struct {
	client  *redis.Client
	window  time.Duration
	lockout time.Duration
}

func NewRateLimitStore(client *redis.Client, window, lockout time.Duration) *RateLimitStore {
	return &RateLimitStore{client: client, window: window, lockout: lockout}
}

func (s *RateLimitStore) Hit(ctx context.Context, key string) (int, error) {
	countKey := rateCountKeyPrefix + key

	cnt, err := s.client.Incr(ctx, countKey).Result()
	if err != nil {
		return 0, storageErr("failed to increment rate counter", err)
	}

	// First hit opens the window.
	if cnt == 1 {
		if err := s.client.Expire(ctx, countKey, s.window).Err(); err != nil {
			return 0, storageErr("failed to expire rate counter", err)
		}
	}

	return int(cnt), nil
}

func (s *RateLimitStore) Block(ctx context.Context, key string) error {
	if err := s.client.Set(ctx, rateBlockKeyPrefix+key, "1", s.lockout).Err(); err != nil {
		return storageErr("failed to set rate block", err)
	}
	return nil
}

func (s *RateLimitStore) BlockedFor(ctx context.Context, key string) (int, error) {
	ttl, err := s.client.TTL(ctx, rateBlockKeyPrefix+key).Result()
	if err != nil {
		return 0, storageErr("failed to get rate block ttl", err)
	}
	if ttl <= 0 {
		return 0, nil
	}
	return int(ttl.Seconds()), nil
}
