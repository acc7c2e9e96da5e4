package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSPublisher publishes events on a NATS subject for other nodes.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher returns nil when the connection or subject is missing.
func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	if conn == nil || subject == "" {
		return nil
	}
	return &NATSPublisher{conn: conn, subject: subject}
}

// Name implements Publisher.
func (p *NATSPublisher) Name() string {
	return "nats"
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(_ context.Context, event EnrollmentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal enrollment event: %w", err)
	}
	return p.conn.Publish(p.subject, payload)
}

// RelayNATS forwards events published by other nodes to the local hub. Every
// node needs every event for its own stream clients, so this is a plain
// subscription rather than a queue group. The subscription drains when ctx ends.
func RelayNATS(ctx context.Context, conn *nats.Conn, subject, source string, hub *Hub, logger zerolog.Logger) error {
	if conn == nil || subject == "" || hub == nil {
		return nil
	}
	log := logger.With().Str("component", "nats_relay").Logger()

	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		var event EnrollmentEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Warn().Err(err).Msg("invalid enrollment event payload")
			return
		}
		if event.Source == source {
			return
		}
		hub.Broadcast(event)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			log.Warn().Err(err).Msg("failed to drain enrollment event subscription")
		}
	}()
	return nil
}
