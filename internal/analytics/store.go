package analytics

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"autocut/internal/database"
	"autocut/internal/logging"

	"github.com/google/uuid"
)

// StoreTracker writes events straight into the local event store,
// skipping the HTTP hop. It is used by the export pipeline, which runs
// in the same process as the collector. Failures are logged and
// dropped so telemetry never blocks an export.
type StoreTracker struct {
	db        *database.Database
	sessionID string
	userAgent string
}

// NewStoreTracker creates a tracker recording into db. The session
// identifier is generated once and reused for the lifetime of the
// process.
func NewStoreTracker(db *database.Database) *StoreTracker {
	return &StoreTracker{
		db:        db,
		sessionID: "sess_" + uuid.NewString(),
		userAgent: fmt.Sprintf("autocut/1.0 (%s; %s)", runtime.GOOS, runtime.GOARCH),
	}
}

// SessionID returns the tracker's session identifier.
func (s *StoreTracker) SessionID() string {
	return s.sessionID
}

// Track implements Tracker.
func (s *StoreTracker) Track(event string, payload map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.db.InsertEvent(ctx, database.Event{
		Event:     event,
		SessionID: s.sessionID,
		Payload:   payload,
		UserAgent: s.userAgent,
	})
	if err != nil {
		logging.Warn("failed to record %s event: %v", event, err)
	}
}
