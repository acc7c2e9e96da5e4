// Package events fans enrollment lifecycle events out to the configured sinks.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/observability"
)

// Type names an enrollment lifecycle event.
type Type string

const (
	TypeSubmitted       Type = "enrollment.submitted"
	TypeApproved        Type = "enrollment.approved"
	TypeRejected        Type = "enrollment.rejected"
	TypePaymentRecorded Type = "enrollment.payment_recorded"
)

// EnrollmentEvent is emitted after an enrollment operation commits.
type EnrollmentEvent struct {
	ID           string    `json:"id"`
	Type         Type      `json:"type"`
	EnrollmentID uint      `json:"enrollment_id"`
	StudentID    uint      `json:"student_id"`
	TutorID      uint      `json:"tutor_id"`
	Status       string    `json:"status"`
	Amount       *float64  `json:"amount,omitempty"`
	Period       string    `json:"period,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
	Source       string    `json:"source"`
}

// Concerns reports whether the account is the event's student or tutor.
func (e EnrollmentEvent) Concerns(accountID uint) bool {
	return accountID != 0 && (e.StudentID == accountID || e.TutorID == accountID)
}

// Publisher delivers events to one sink.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, event EnrollmentEvent) error
}

// Fanout delivers each event to every registered publisher. Sink failures are
// logged and counted and never returned to the caller.
type Fanout struct {
	publishers []Publisher
	source     string
	logger     zerolog.Logger
}

// NewFanout builds a fanout. Nil publishers are skipped so optional sinks can be
// passed unconditionally.
func NewFanout(source string, logger zerolog.Logger, publishers ...Publisher) *Fanout {
	if source == "" {
		source = uuid.NewString()
	}

	active := make([]Publisher, 0, len(publishers))
	for _, publisher := range publishers {
		if publisher != nil {
			active = append(active, publisher)
		}
	}

	return &Fanout{
		publishers: active,
		source:     source,
		logger:     logger.With().Str("component", "event_fanout").Logger(),
	}
}

// Source identifies this node in published events.
func (f *Fanout) Source() string {
	return f.source
}

// Sinks lists the names of the registered publishers.
func (f *Fanout) Sinks() []string {
	names := make([]string, 0, len(f.publishers))
	for _, publisher := range f.publishers {
		names = append(names, publisher.Name())
	}
	return names
}

// Publish stamps the event and hands it to every sink.
func (f *Fanout) Publish(ctx context.Context, event EnrollmentEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.Source == "" {
		event.Source = f.source
	}

	for _, publisher := range f.publishers {
		sink := publisher.Name()
		if err := publisher.Publish(ctx, event); err != nil {
			observability.EventsFailed().WithLabelValues(sink, string(event.Type)).Inc()
			f.logger.Warn().
				Err(err).
				Str("sink", sink).
				Str("event_type", string(event.Type)).
				Uint("enrollment_id", event.EnrollmentID).
				Msg("failed to deliver enrollment event")
			continue
		}
		observability.EventsPublished().WithLabelValues(sink, string(event.Type)).Inc()
	}
}
