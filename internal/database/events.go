package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"autocut/internal/metrics"
)

// Event is a stored analytics event.
type Event struct {
	ID        int64          `json:"id"`
	Event     string         `json:"event"`
	SessionID string         `json:"session_id"`
	Payload   map[string]any `json:"payload"`
	UserAgent string         `json:"user_agent,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// InsertEvent stores one analytics event. The payload is serialized as
// JSON; a nil payload stores an empty object.
func (d *Database) InsertEvent(ctx context.Context, e Event) error {
	start := time.Now()

	payload := e.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}

	timestamp := e.Timestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(opCtx,
		`INSERT INTO events (event, session_id, payload, user_agent, timestamp) VALUES (?, ?, ?, ?, ?)`,
		e.Event, e.SessionID, string(encoded), e.UserAgent, timestamp,
	)

	metrics.RecordDBQuery("insert_event", time.Since(start).Seconds(), err)
	metrics.AnalyticsEventsTotal.WithLabelValues(e.Event).Inc()

	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// CountEvents returns the total number of stored events.
func (d *Database) CountEvents(ctx context.Context) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int64
	err := d.db.QueryRowContext(opCtx, `SELECT COUNT(*) FROM events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// PruneEvents deletes all but the newest keep events. It returns the
// number of rows removed.
func (d *Database) PruneEvents(ctx context.Context, keep int64) (int64, error) {
	start := time.Now()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(opCtx,
		`DELETE FROM events WHERE id NOT IN (SELECT id FROM events ORDER BY id DESC LIMIT ?)`,
		keep,
	)

	metrics.RecordDBQuery("prune_events", time.Since(start).Seconds(), err)

	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned events: %w", err)
	}
	return removed, nil
}
