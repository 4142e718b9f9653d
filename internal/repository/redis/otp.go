package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avetisk/authgate/internal/model"
)

var _ model.OTPStore = (*OTPStore)(nil)

const otpKeyPrefix = "otp:pending:"

// incrAttemptsScript bumps the attempt counter only when the entry still
// exists. Doing the existence check server-side closes the window where a
// concurrent delete would otherwise resurrect the key as a bare counter.
var incrAttemptsScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], "attempts", 1)
`)

// OTPStore keeps pending codes in Redis hashes with a TTL matching the
// expiry window, so expired entries are reclaimed by Redis itself.
type OTPStore struct {
	client *redis.Client
}

func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

func (s *OTPStore) Put(ctx context.Context, otp model.PendingOTP) error {
	key := otpKeyPrefix + otp.PhoneKey

	// DEL before HSET so a re-request resets the attempt counter too.
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		"code", otp.Code,
		"created_at", otp.CreatedAt.UnixNano(),
		"attempts", otp.AttemptCount,
	)
	pipe.Expire(ctx, key, model.OTPExpiryWindow)

	if _, err := pipe.Exec(ctx); err != nil {
		return storageErr("failed to store pending otp", err)
	}

	return nil
}

func (s *OTPStore) Get(ctx context.Context, phoneKey string) (model.PendingOTP, error) {
	fields, err := s.client.HGetAll(ctx, otpKeyPrefix+phoneKey).Result()
	if err != nil {
		return model.PendingOTP{}, storageErr("failed to get pending otp", err)
	}
	if len(fields) == 0 {
		return model.PendingOTP{}, model.ErrNotFound
	}

	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return model.PendingOTP{}, storageErr("failed to parse pending otp created_at", err)
	}
	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return model.PendingOTP{}, storageErr("failed to parse pending otp attempts", err)
	}

	return model.PendingOTP{
		PhoneKey:     phoneKey,
		Code:         fields["code"],
		CreatedAt:    time.Unix(0, createdAt),
		AttemptCount: attempts,
	}, nil
}

func (s *OTPStore) Delete(ctx context.Context, phoneKey string) error {
	if err := s.client.Del(ctx, otpKeyPrefix+phoneKey).Err(); err != nil {
		return storageErr("failed to delete pending otp", err)
	}
	return nil
}

func (s *OTPStore) IncrementAttempts(ctx context.Context, phoneKey string) (int, error) {
	n, err := incrAttemptsScript.Run(ctx, s.client, []string{otpKeyPrefix + phoneKey}).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, storageErr("failed to increment otp attempts", err)
	}
	if n < 0 {
		return 0, model.ErrNotFound
	}
	return n, nil
}

// Sweep is a no-op: key TTLs already bound the store's growth.
func (s *OTPStore) Sweep(ctx context.Context) error {
	return nil
}
