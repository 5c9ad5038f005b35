package handlers

import (
	"encoding/json"
	"net/http"

	"autocut/internal/database"
	"autocut/internal/logging"
	"autocut/internal/metrics"
)

// maxEventBytes caps a single analytics event submission.
const maxEventBytes = 16 << 10

// knownEvents is the accepted event taxonomy. Anything else is
// rejected so the dashboard aggregates stay meaningful.
var knownEvents = map[string]bool{
	"app_loaded":            true,
	"file_selected":         true,
	"marker_set":            true,
	"vertical_mode_toggled": true,
	"export_started":        true,
	"export_success":        true,
	"export_failed":         true,
	"ffmpeg_worker_error":   true,
	"ffmpeg_init_error":     true,
}

// eventSubmission is the wire format posted by clients.
type eventSubmission struct {
	Event     string         `json:"event"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
}

// IngestEvent stores one analytics event. Ingestion is permissive
// about optional fields but strict about the event name.
func (h *Handlers) IngestEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBytes)

	var submission eventSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		metrics.AnalyticsRejectedTotal.Inc()
		writeJSONError(w, "invalid event body", http.StatusBadRequest)
		return
	}

	if !knownEvents[submission.Event] {
		metrics.AnalyticsRejectedTotal.Inc()
		writeJSONError(w, "unknown event name", http.StatusBadRequest)
		return
	}

	userAgent := submission.UserAgent
	if userAgent == "" {
		userAgent = r.Header.Get("User-Agent")
	}

	err := h.db.InsertEvent(r.Context(), database.Event{
		Event:     submission.Event,
		SessionID: submission.SessionID,
		Payload:   submission.Payload,
		UserAgent: userAgent,
		Timestamp: submission.Timestamp,
	})
	if err != nil {
		logging.Error("failed to store analytics event: %v", err)
		writeJSONError(w, "failed to store event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "accepted"})
}
