package events

import (
	"context"
	"sync"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/observability"
)

const subscriberBufferSize = 16

// Hub delivers events to in-process subscribers keyed by account.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan EnrollmentEvent]struct{}
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[uint]map[chan EnrollmentEvent]struct{})}
}

// Name implements Publisher.
func (h *Hub) Name() string {
	return "hub"
}

// Publish implements Publisher.
func (h *Hub) Publish(_ context.Context, event EnrollmentEvent) error {
	h.Broadcast(event)
	return nil
}

// Subscribe registers a channel receiving the events that concern the account.
// The returned func unsubscribes and closes the channel.
func (h *Hub) Subscribe(accountID uint) (<-chan EnrollmentEvent, func()) {
	ch := make(chan EnrollmentEvent, subscriberBufferSize)

	h.mu.Lock()
	if _, ok := h.subscribers[accountID]; !ok {
		h.subscribers[accountID] = make(map[chan EnrollmentEvent]struct{})
	}
	h.subscribers[accountID][ch] = struct{}{}
	h.mu.Unlock()
	observability.StreamClientsActive().Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if subscribers, ok := h.subscribers[accountID]; ok {
				delete(subscribers, ch)
				if len(subscribers) == 0 {
					delete(h.subscribers, accountID)
				}
			}
			close(ch)
			observability.StreamClientsActive().Dec()
		})
	}
}

// Broadcast delivers the event to the student's and the tutor's subscribers.
// Slow subscribers drop events rather than block the publisher.
func (h *Hub) Broadcast(event EnrollmentEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, accountID := range []uint{event.StudentID, event.TutorID} {
		for ch := range h.subscribers[accountID] {
			select {
			case ch <- event:
			default:
			}
		}
	}
}

// Subscribers returns the number of channels registered for the account.
func (h *Hub) Subscribers(accountID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[accountID])
}
