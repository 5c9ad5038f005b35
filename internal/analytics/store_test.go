package analytics

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"autocut/internal/database"
)

func TestStoreTrackerRecordsEvents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "events.db")
	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	defer db.Close()

	tracker := NewStoreTracker(db)

	if !strings.HasPrefix(tracker.SessionID(), "sess_") {
		t.Errorf("SessionID() = %q, want sess_ prefix", tracker.SessionID())
	}

	tracker.Track("export_started", map[string]any{"kind": "video"})
	tracker.Track("export_success", map[string]any{"duration_ms": 1200})

	count, err := db.CountEvents(context.Background())
	if err != nil {
		t.Fatalf("CountEvents() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountEvents() = %d, want 2", count)
	}

	errorsList, err := db.GetRecentErrors(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetRecentErrors() error = %v", err)
	}
	if len(errorsList) != 0 {
		t.Errorf("GetRecentErrors() returned %d events, want 0", len(errorsList))
	}
}
