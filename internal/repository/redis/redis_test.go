package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOTPStore(t *testing.T) {
	store := NewOTPStore(nil)

	assert.NotNil(t, store)
	assert.Nil(t, store.client)
}

func TestNewSessionStore(t *testing.T) {
	store := NewSessionStore(nil)

	assert.NotNil(t, store)
	assert.Nil(t, store.client)
}

func TestNewRateLimitStore(t *testing.T) {
	store := NewRateLimitStore(nil, time.Minute, time.Hour)

	assert.NotNil(t, store)
	assert.Equal(t, time.Minute, store.window)
	assert.Equal(t, time.Hour, store.lockout)
}
