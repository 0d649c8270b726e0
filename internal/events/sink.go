/*

This file contains the event sink implementations the service can be wired
with. Sinks are fire-and-forget by contract: every failure is logged and
swallowed so event transport can never roll back a ledger mutation.

*/

package events

import (
	"github.com/google/uuid"

	"github.com/optionsvault/ovm/internal/logger"
	"github.com/optionsvault/ovm/internal/state"
	"github.com/optionsvault/ovm/internal/types"
	"github.com/optionsvault/ovm/internal/vault"
)

var eventLogger = logger.GetForComponent("events")

// LogSink writes every event to the structured log.
type LogSink struct{}

// NewLogSink creates a logging sink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Emit logs the event with its type and payload.
func (s *LogSink) Emit(event types.DomainEvent) {
	eventLogger.Info().
		Str("event_type", event.EventType()).
		Interface("event", event).
		Msg("Domain event")
}

// StoreSink persists events to the vault_events table for the audit API.
type StoreSink struct{}

// NewStoreSink creates a persisting sink. Requires state.InitDB to have run.
func NewStoreSink() *StoreSink {
	return &StoreSink{}
}

// Emit writes the event row, assigning it a fresh event ID.
func (s *StoreSink) Emit(event types.DomainEvent) {
	if err := state.SaveEvent(uuid.NewString(), event.EventType(), event); err != nil {
		eventLogger.Error().Err(err).Str("event_type", event.EventType()).Msg("Failed to persist domain event")
	}
}

// MultiSink fans an event out to several sinks.
type MultiSink struct {
	sinks []vault.EventSink
}

// NewMultiSink combines sinks; nil entries are skipped.
func NewMultiSink(sinks ...vault.EventSink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Emit delivers the event to every configured sink.
func (m *MultiSink) Emit(event types.DomainEvent) {
	for _, s := range m.sinks {
		s.Emit(event)
	}
}
