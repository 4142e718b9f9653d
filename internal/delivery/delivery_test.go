package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetisk/authgate/internal/testutil"
)

func TestWhatsAppBridge_SendText(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/send", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	bridge := NewWhatsAppBridge(srv.URL, time.Second)
	require.NoError(t, bridge.SendText(context.Background(), "+15551234567", "Your code is 123456"))

	assert.Equal(t, "+15551234567", got["to"])
	assert.Equal(t, "Your code is 123456", got["message"])
}

func TestWhatsAppBridge_SendText_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	bridge := NewWhatsAppBridge(srv.URL, time.Second)
	err := bridge.SendText(context.Background(), "+15551234567", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWhatsAppBridge_SendText_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	bridge := NewWhatsAppBridge(srv.URL, 50*time.Millisecond)
	err := bridge.SendText(context.Background(), "+15551234567", "body")
	require.Error(t, err)
}

func TestSMSGateway_SendText(t *testing.T) {
	var gotKey string
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		gotKey = r.Header.Get("X-Api-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	gw := NewSMSGateway(srv.URL, "secret-key", time.Second)
	require.NoError(t, gw.SendText(context.Background(), "+15551234567", "Your code is 123456"))

	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "+15551234567", got["to"])
}

func TestSMSGateway_SendText_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	gw := NewSMSGateway(srv.URL, "bad-key", time.Second)
	err := gw.SendText(context.Background(), "+15551234567", "body")
	require.Error(t, err)
}

func TestDevEcho_SendText(t *testing.T) {
	echo := NewDevEcho(testutil.MakeNoopLogger())

	assert.Equal(t, "dev", echo.Name())
	assert.NoError(t, echo.SendText(context.Background(), "+15551234567", "body"))
}
