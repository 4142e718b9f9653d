// Package redis implements the OTP, session and rate-limit stores on a
// shared Redis instance. Process-local maps are not safe across multiple
// server instances, so any multi-instance deployment must run with these
// stores instead of the in-memory ones.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/avetisk/authgate/internal/model"
)

func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(model.ErrStorage, err))
}
