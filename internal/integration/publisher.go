// Package integration forwards device activity to external systems over
// NATS. Publishing is optional and strictly best-effort: the display
// protocol never waits on, or fails because of, the event bus.
package integration

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/eink-server/eink-display-server/internal/models"
)

// Publisher publishes device events. A nil Publisher (or one created
// without a connection) silently drops events, so callers never need a
// nil check around the optional bus.
type Publisher struct {
	nc *nats.Conn
}

// NewPublisher creates a publisher. nc may be nil for standalone mode.
func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc}
}

// PublishDeviceEvent publishes an event on display.device.<id>.<type>.
// Failures are logged and swallowed.
func (p *Publisher) PublishDeviceEvent(event *models.DeviceEvent) {
	if p == nil || p.nc == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal device event")
		return
	}

	subject := fmt.Sprintf("display.device.%s.%s", event.FriendlyID, event.Type)
	if err := p.nc.Publish(subject, data); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("Failed to publish device event")
	}
}
