package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound signals a missing entity. For session validation it must
	// never be conflated with ErrStorage: "no session" and "could not check
	// session" are different answers.
	ErrNotFound = errors.New("not found")

	// ErrSessionExpired signals a session past its fixed expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrRateLimited signals too many requests for a credential.
	ErrRateLimited = errors.New("rate limited")

	// ErrStorage wraps persistence-layer failures. Callers map it to a 500,
	// never to an authentication failure.
	ErrStorage = errors.New("storage unavailable")

	// ErrValidation signals malformed caller input.
	ErrValidation = errors.New("invalid input")
)

// RateLimitError carries the lockout metadata surfaced in 429 responses.
type RateLimitError struct {
	RetryAfter time.Duration
	Remaining  int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
