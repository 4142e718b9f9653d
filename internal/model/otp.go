package model

import (
	"context"
	"time"
)

// OTPExpiryWindow is how long an issued code stays verifiable.
// The source systems disagreed between 5 and 15 minutes; 5 is the policy here.
const OTPExpiryWindow = 5 * time.Minute

// OTPMaxAttempts is the number of verification attempts allowed per code.
const OTPMaxAttempts = 5

// OTPStore persists pending one-time codes, at most one per phone key.
type OTPStore interface {
	// Put stores a pending code, overwriting any prior entry for the key.
	Put(ctx context.Context, otp PendingOTP) error
	Get(ctx context.Context, phoneKey string) (PendingOTP, error)
	Delete(ctx context.Context, phoneKey string) error
	// IncrementAttempts atomically bumps the attempt counter and returns
	// the new value. Atomicity closes the check-then-act race between
	// concurrent verifications of the same key.
	IncrementAttempts(ctx context.Context, phoneKey string) (int, error)
	// Sweep removes entries older than the expiry window.
	Sweep(ctx context.Context) error
}

// PendingOTP describes a code awaiting verification.
type PendingOTP struct {
	PhoneKey     string
	Code         string
	CreatedAt    time.Time
	AttemptCount int
}

// Expired reports whether the code has outlived the expiry window.
func (o PendingOTP) Expired(now time.Time) bool {
	return now.Sub(o.CreatedAt) > OTPExpiryWindow
}

// VerifyResult is the outcome of an OTP verification attempt.
type VerifyResult string

const (
	// VerifyOK means the code matched and has been invalidated.
	VerifyOK VerifyResult = "ok"
	// VerifyExpired means the code outlived the expiry window.
	VerifyExpired VerifyResult = "expired"
	// VerifyExhausted means the attempt limit was exceeded.
	VerifyExhausted VerifyResult = "exhausted"
	// VerifyMismatch means the submitted code did not match.
	VerifyMismatch VerifyResult = "mismatch"
	// VerifyNotFound means no pending code exists for the key.
	VerifyNotFound VerifyResult = "notFound"
)
