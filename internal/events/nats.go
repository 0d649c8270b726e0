package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/optionsvault/ovm/internal/types"
)

// subjectPrefix is the root of the event subject hierarchy. The event type
// is appended, e.g. ovm.events.deposit.
const subjectPrefix = "ovm.events."

// NATSSink publishes domain events as JSON messages.
type NATSSink struct {
	conn *nats.Conn
}

// NewNATSSink connects to the given NATS server.
func NewNATSSink(url string) (*NATSSink, error) {
	conn, err := nats.Connect(url, nats.Name("ovm-events"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return &NATSSink{conn: conn}, nil
}

// Emit publishes the event to its type-specific subject. Publish failures
// are logged and dropped.
func (s *NATSSink) Emit(event types.DomainEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		eventLogger.Error().Err(err).Str("event_type", event.EventType()).Msg("Failed to marshal domain event")
		return
	}
	if err := s.conn.Publish(subjectPrefix+event.EventType(), payload); err != nil {
		eventLogger.Error().Err(err).Str("event_type", event.EventType()).Msg("Failed to publish domain event")
	}
}

// Close drains and closes the connection.
func (s *NATSSink) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}
