// Package delivery implements the external channels that transmit one-time
// codes to users. Every channel applies a bounded timeout; a slow or dead
// upstream is a delivery failure, never a hang.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avetisk/authgate/internal/model"
)

var _ model.DeliveryChannel = (*WhatsAppBridge)(nil)

// WhatsAppBridge sends messages through an external WhatsApp bridge process
// exposing a POST /api/send endpoint.
type WhatsAppBridge struct {
	baseURL string
	client  *http.Client
}

func NewWhatsAppBridge(baseURL string, timeout time.Duration) *WhatsAppBridge {
	return &WhatsAppBridge{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (w *WhatsAppBridge) Name() string {
	return "whatsapp"
}

func (w *WhatsAppBridge) SendText(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(map[string]string{
		"to":      to,
		"message": body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal bridge payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/api/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach whatsapp bridge: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("whatsapp bridge returned status %d", resp.StatusCode)
	}

	return nil
}
