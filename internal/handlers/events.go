package handlers

import (
	"net/http"
	"strconv"

	"autocut/internal/database"
	"autocut/internal/logging"
)

// GetSummary returns aggregate export counts for the dashboard.
// Optional "from" and "to" query parameters bound the time range.
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	from, to := rangeParams(r)

	summary, err := h.db.GetSummary(r.Context(), from, to)
	if err != nil {
		logging.Error("summary query failed: %v", err)
		writeJSONError(w, "failed to compute summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, summary)
}

// GetFunnel returns per-step unique session counts with conversion
// percentages.
func (h *Handlers) GetFunnel(w http.ResponseWriter, r *http.Request) {
	from, to := rangeParams(r)

	funnel, err := h.db.GetFunnel(r.Context(), from, to)
	if err != nil {
		logging.Error("funnel query failed: %v", err)
		writeJSONError(w, "failed to compute funnel", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, funnel)
}

// GetTimeseries returns per-day event counts.
func (h *Handlers) GetTimeseries(w http.ResponseWriter, r *http.Request) {
	from, to := rangeParams(r)

	rows, err := h.db.GetTimeseries(r.Context(), from, to)
	if err != nil {
		logging.Error("timeseries query failed: %v", err)
		writeJSONError(w, "failed to compute timeseries", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []database.TimeseriesRow{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, rows)
}

// GetRecentErrors returns the newest failure events. The optional
// "limit" query parameter caps the result size.
func (h *Handlers) GetRecentErrors(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			writeJSONError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := h.db.GetRecentErrors(r.Context(), limit)
	if err != nil {
		logging.Error("recent errors query failed: %v", err)
		writeJSONError(w, "failed to load recent errors", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []database.Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, events)
}

func rangeParams(r *http.Request) (string, string) {
	query := r.URL.Query()
	return query.Get("from"), query.Get("to")
}
