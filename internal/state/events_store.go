// ./internal/state/events_store.go
package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// StoredEvent is an audit row from the vault_events table.
type StoredEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// SaveEvent persists one domain event with its assigned ID.
func SaveEvent(eventID, eventType string, payload any) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	stmt := `INSERT INTO vault_events (event_id, event_type, payload) VALUES ($1, $2, $3);`
	if _, err := DB.Exec(stmt, eventID, eventType, body); err != nil {
		return fmt.Errorf("failed to insert event %s: %w", eventID, err)
	}

	log.Debug().Str("event_id", eventID).Str("event_type", eventType).Msg("Saved domain event")
	return nil
}

// GetRecentEvents retrieves recent events, newest first.
func GetRecentEvents(limit int) ([]StoredEvent, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 20 // Default limit
	}

	query := `
		SELECT event_id, event_type, payload, created_at
		FROM vault_events
		ORDER BY created_at DESC
		LIMIT $1;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var e StoredEvent
		if err := rows.Scan(&e.EventID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			log.Error().Err(err).Msg("Failed to scan event row")
			continue // Skip this row and continue with others
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	log.Debug().Int("count", len(events)).Msg("Retrieved recent events")
	return events, nil
}

// GetEventsByType retrieves recent events of one kind, newest first.
func GetEventsByType(eventType string, limit int) ([]StoredEvent, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT event_id, event_type, payload, created_at
		FROM vault_events
		WHERE event_type = $1
		ORDER BY created_at DESC
		LIMIT $2;`

	rows, err := DB.Query(query, eventType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events of type %s: %w", eventType, err)
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var e StoredEvent
		if err := rows.Scan(&e.EventID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			log.Error().Err(err).Msg("Failed to scan event row")
			continue
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return events, nil
}
