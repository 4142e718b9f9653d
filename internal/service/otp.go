package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/avetisk/authgate/internal/logger"
	"github.com/avetisk/authgate/internal/model"
)

// OTP owns the pending-code lifecycle: at most one live code per phone key,
// expiry and attempt-count enforcement. Delivery is someone else's job.
type OTP struct {
	store  model.OTPStore
	logger *logger.Logger
	now    func() time.Time
}

func NewOTP(store model.OTPStore, logger *logger.Logger) *OTP {
	return &OTP{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Issue generates a uniformly random six-digit code and stores it for the
// key, overwriting any prior entry. The code goes to the delivery path, not
// to the client response.
func (o *OTP) Issue(ctx context.Context, phoneKey string) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	err = o.store.Put(ctx, model.PendingOTP{
		PhoneKey:     phoneKey,
		Code:         code,
		CreatedAt:    o.now(),
		AttemptCount: 0,
	})
	if err != nil {
		o.logger.Error("OTP service: failed to store pending code",
			"phone", phoneKey,
			"error", err.Error())
		return "", fmt.Errorf("failed to store pending code: %w", err)
	}

	o.logger.Debug("OTP service: code issued", "phone", phoneKey)

	return code, nil
}

// Verify checks a submitted code against the pending entry for the key.
// Order matters: missing, expired and exhausted are decided before the code
// comparison, and the entry survives a mismatch until it expires or the
// attempt limit is hit. A storage failure is returned as an error, never
// disguised as a verification outcome.
func (o *OTP) Verify(ctx context.Context, phoneKey, submittedCode string) (model.VerifyResult, error) {
	pending, err := o.store.Get(ctx, phoneKey)
	if errors.Is(err, model.ErrNotFound) {
		return model.VerifyNotFound, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get pending code: %w", err)
	}

	if pending.Expired(o.now()) {
		if err := o.store.Delete(ctx, phoneKey); err != nil {
			return "", fmt.Errorf("failed to delete expired code: %w", err)
		}
		return model.VerifyExpired, nil
	}

	attempts, err := o.store.IncrementAttempts(ctx, phoneKey)
	if errors.Is(err, model.ErrNotFound) {
		// A concurrent verification consumed the entry between Get and here.
		return model.VerifyNotFound, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to increment attempts: %w", err)
	}

	if attempts > model.OTPMaxAttempts {
		if err := o.store.Delete(ctx, phoneKey); err != nil {
			return "", fmt.Errorf("failed to delete exhausted code: %w", err)
		}
		o.logger.Info("OTP service: attempt limit exceeded", "phone", phoneKey)
		return model.VerifyExhausted, nil
	}

	if subtle.ConstantTimeCompare([]byte(pending.Code), []byte(submittedCode)) != 1 {
		o.logger.Debug("OTP service: code mismatch", "phone", phoneKey, "attempts", attempts)
		return model.VerifyMismatch, nil
	}

	if err := o.store.Delete(ctx, phoneKey); err != nil {
		return "", fmt.Errorf("failed to invalidate verified code: %w", err)
	}

	o.logger.Info("OTP service: code verified", "phone", phoneKey)

	return model.VerifyOK, nil
}

// Sweep drops expired entries; run it periodically from a janitor.
func (o *OTP) Sweep(ctx context.Context) error {
	return o.store.Sweep(ctx)
}

func randomCode() (string, error) {
	// Uniform over 100000-999999.
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
