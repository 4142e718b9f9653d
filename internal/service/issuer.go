package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avetisk/authgate/internal/logger"
	"github.com/avetisk/authgate/internal/model"
	"github.com/avetisk/authgate/internal/phone"
)

// devChannelName marks the logging-only channel: codes sent through it are
// reported as undelivered so development setups can surface them.
const devChannelName = "dev"

const (
	deliveryAttempts       = 3
	deliveryInitialBackoff = 500 * time.Millisecond
	deliveryMaxBackoff     = 2 * time.Second
)

// SendResult reports how an issuance request ended. When no channel
// delivered the code, Channel is "dev" and Code carries the issued code so
// development setups can surface it; production handlers must not.
type SendResult struct {
	PhoneKey  string
	Delivered bool
	Channel   string
	Code      string
}

// Issuer bridges the OTP service to a delivery channel: rate-limits the
// credential, issues a code, and tries to deliver it. Delivery failure is
// reported in the result, never raised as an error, because the stored code
// stays verifiable either way.
type Issuer struct {
	otp        *OTP
	rateLimits model.RateLimitStore
	channel    model.DeliveryChannel
	maxSends   int
	lockout    time.Duration
	timeout    time.Duration
	logger     *logger.Logger
}

func NewIssuer(
	otp *OTP,
	rateLimits model.RateLimitStore,
	channel model.DeliveryChannel,
	maxSends int,
	lockout time.Duration,
	timeout time.Duration,
	logger *logger.Logger,
) *Issuer {
	return &Issuer{
		otp:        otp,
		rateLimits: rateLimits,
		channel:    channel,
		maxSends:   maxSends,
		lockout:    lockout,
		timeout:    timeout,
		logger:     logger,
	}
}

// SendCode issues and delivers a code for the raw phone number. The number
// is normalized here, once, and the normalized key is what every later
// lookup uses.
func (i *Issuer) SendCode(ctx context.Context, rawPhone string) (SendResult, error) {
	phoneKey, err := phone.Normalize(rawPhone)
	if err != nil {
		return SendResult{}, fmt.Errorf("%w: %s", model.ErrValidation, err.Error())
	}

	if err := i.checkRateLimit(ctx, phoneKey); err != nil {
		return SendResult{}, err
	}

	code, err := i.otp.Issue(ctx, phoneKey)
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to issue code: %w", err)
	}

	body := fmt.Sprintf("Your verification code is %s. It is valid for %d minutes.",
		code, int(model.OTPExpiryWindow.Minutes()))

	if i.channel == nil || i.channel.Name() == devChannelName {
		if i.channel != nil {
			_ = i.channel.SendText(ctx, phoneKey, body)
		}
		i.logger.Info("Issuer: no real delivery channel configured, code echoed for dev use",
			"phone", phoneKey)
		return SendResult{PhoneKey: phoneKey, Delivered: false, Channel: devChannelName, Code: code}, nil
	}

	if err := i.deliver(ctx, phoneKey, body); err != nil {
		i.logger.Error("Issuer: delivery failed, code remains verifiable",
			"phone", phoneKey,
			"channel", i.channel.Name(),
			"error", err.Error())
		return SendResult{PhoneKey: phoneKey, Delivered: false, Channel: devChannelName, Code: code}, nil
	}

	i.logger.Info("Issuer: code delivered",
		"phone", phoneKey,
		"channel", i.channel.Name())

	return SendResult{PhoneKey: phoneKey, Delivered: true, Channel: i.channel.Name()}, nil
}

func (i *Issuer) checkRateLimit(ctx context.Context, phoneKey string) error {
	blocked, err := i.rateLimits.BlockedFor(ctx, phoneKey)
	if err != nil {
		return fmt.Errorf("failed to check rate block: %w", err)
	}
	if blocked > 0 {
		return &model.RateLimitError{RetryAfter: time.Duration(blocked) * time.Second}
	}

	count, err := i.rateLimits.Hit(ctx, phoneKey)
	if err != nil {
		return fmt.Errorf("failed to count send attempt: %w", err)
	}
	if count > i.maxSends {
		if err := i.rateLimits.Block(ctx, phoneKey); err != nil {
			return fmt.Errorf("failed to set rate block: %w", err)
		}
		i.logger.Info("Issuer: credential locked out", "phone", phoneKey, "sends", count)
		return &model.RateLimitError{RetryAfter: i.lockout, Remaining: 0}
	}

	return nil
}

// deliver tries the channel with a bounded per-attempt timeout and capped
// backoff between attempts.
func (i *Issuer) deliver(ctx context.Context, to, body string) error {
	backoff := deliveryInitialBackoff

	var lastErr error
	for attempt := 1; attempt <= deliveryAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, i.timeout)
		lastErr = i.channel.SendText(attemptCtx, to, body)
		cancel()

		if lastErr == nil {
			return nil
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return lastErr
		}

		if attempt < deliveryAttempts {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return lastErr
			}
			backoff *= 2
			if backoff > deliveryMaxBackoff {
				backoff = deliveryMaxBackoff
			}
		}
	}

	return lastErr
}
