package delivery

import (
	"context"

	"github.com/avetisk/authgate/internal/logger"
	"github.com/avetisk/authgate/internal/model"
)

var _ model.DeliveryChannel = (*DevEcho)(nil)

// DevEcho is the development fallback channel: it only logs the message.
// The issuer treats it as undelivered so callers can decide whether to echo
// the code in the response.
type DevEcho struct {
	logger *logger.Logger
}

func NewDevEcho(logger *logger.Logger) *DevEcho {
	return &DevEcho{logger: logger}
}

func (d *DevEcho) Name() string {
	return "dev"
}

func (d *DevEcho) SendText(ctx context.Context, to, body string) error {
	d.logger.Info("dev echo delivery", "to", to, "body", body)
	return nil
}
