package model

import "context"

// DeliveryChannel transmits a one-time code to its recipient through an
// external service (WhatsApp bridge, SMS gateway). Implementations apply
// their own bounded timeout and return an error on any delivery failure.
type DeliveryChannel interface {
	Name() string
	SendText(ctx context.Context, to, body string) error
}

// RateLimitStore tracks send attempts per credential key.
type RateLimitStore interface {
	// Hit records one attempt inside the window and returns the running count.
	Hit(ctx context.Context, key string) (int, error)
	// Block locks the key out for the store's configured lockout.
	Block(ctx context.Context, key string) error
	// BlockedFor returns the remaining lockout, zero when not blocked.
	BlockedFor(ctx context.Context, key string) (remaining int, err error)
}
