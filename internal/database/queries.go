package database

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"autocut/internal/metrics"
)

// FunnelSteps are the session milestones measured by the dashboard
// funnel, in order.
var FunnelSteps = []string{"app_loaded", "file_selected", "export_started", "export_success"}

// errorEvents are the event names counted as failures in the summary.
var errorEvents = []string{"export_failed", "ffmpeg_worker_error", "ffmpeg_init_error"}

// Summary aggregates export activity over a time range.
type Summary struct {
	Exports       int64 `json:"exports"`
	Started       int64 `json:"started"`
	Errors        int64 `json:"errors"`
	SuccessRate   int   `json:"successRate"`
	AvgDurationMS int64 `json:"avgDurationMs"`
}

// FunnelStep is one step of the session funnel.
type FunnelStep struct {
	Name       string `json:"name"`
	Value      int64  `json:"value"`
	Conversion int    `json:"conversion"`
}

// Funnel is the full funnel report.
type Funnel struct {
	Steps             []FunnelStep `json:"steps"`
	OverallConversion int          `json:"overall_conversion"`
}

// TimeseriesRow is one (day, event) bucket.
type TimeseriesRow struct {
	Day   string `json:"day"`
	Event string `json:"event"`
	Count int64  `json:"count"`
}

// normalizeRange fills open range bounds: an empty from means the
// beginning of time, an empty to means now.
func normalizeRange(from, to string) (string, string) {
	if from == "" {
		from = "1970-01-01"
	}
	if to == "" {
		to = time.Now().UTC().Format(time.RFC3339Nano)
	}
	return from, to
}

func (d *Database) countEvents(ctx context.Context, from, to string, names ...string) (int64, error) {
	query := `SELECT COUNT(*) FROM events WHERE timestamp >= ? AND timestamp <= ? AND event IN (?` +
		repeatPlaceholder(len(names)-1) + `)`

	args := []any{from, to}
	for _, name := range names {
		args = append(args, name)
	}

	var count int64
	err := d.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func repeatPlaceholder(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += ", ?"
	}
	return s
}

// GetSummary aggregates export counts, the success rate, and the
// average export duration over [from, to]. Empty bounds are open.
func (d *Database) GetSummary(ctx context.Context, from, to string) (*Summary, error) {
	start := time.Now()
	from, to = normalizeRange(from, to)

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	summary := &Summary{}
	var err error
	defer func() {
		metrics.RecordDBQuery("summary", time.Since(start).Seconds(), err)
	}()

	if summary.Exports, err = d.countEvents(opCtx, from, to, "export_success"); err != nil {
		return nil, fmt.Errorf("failed to count exports: %w", err)
	}
	if summary.Started, err = d.countEvents(opCtx, from, to, "export_started"); err != nil {
		return nil, fmt.Errorf("failed to count started exports: %w", err)
	}
	if summary.Errors, err = d.countEvents(opCtx, from, to, errorEvents...); err != nil {
		return nil, fmt.Errorf("failed to count errors: %w", err)
	}

	var avg *float64
	err = d.db.QueryRowContext(opCtx,
		`SELECT AVG(CAST(json_extract(payload, '$.duration_ms') AS REAL))
		 FROM events
		 WHERE event = 'export_success'
		   AND timestamp >= ? AND timestamp <= ?
		   AND json_extract(payload, '$.duration_ms') IS NOT NULL`,
		from, to,
	).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("failed to average export duration: %w", err)
	}
	if avg != nil {
		summary.AvgDurationMS = int64(math.Round(*avg))
	}

	if summary.Started > 0 {
		summary.SuccessRate = int(math.Round(float64(summary.Exports) / float64(summary.Started) * 100))
	}

	return summary, nil
}

// GetFunnel reports unique-session counts for each funnel step over
// [from, to], with conversion relative to the first step.
func (d *Database) GetFunnel(ctx context.Context, from, to string) (*Funnel, error) {
	start := time.Now()
	from, to = normalizeRange(from, to)

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	counts := make(map[string]int64, len(FunnelSteps))
	var err error
	defer func() {
		metrics.RecordDBQuery("funnel", time.Since(start).Seconds(), err)
	}()

	for _, step := range FunnelSteps {
		var sessions int64
		err = d.db.QueryRowContext(opCtx,
			`SELECT COUNT(DISTINCT session_id) FROM events
			 WHERE event = ? AND timestamp >= ? AND timestamp <= ?`,
			step, from, to,
		).Scan(&sessions)
		if err != nil {
			return nil, fmt.Errorf("failed to count funnel step %s: %w", step, err)
		}
		counts[step] = sessions
	}

	funnel := &Funnel{}
	first := counts[FunnelSteps[0]]
	for i, step := range FunnelSteps {
		conversion := 100
		if i > 0 {
			conversion = 0
			if first > 0 {
				conversion = int(math.Round(float64(counts[step]) / float64(first) * 100))
			}
		}
		funnel.Steps = append(funnel.Steps, FunnelStep{
			Name:       step,
			Value:      counts[step],
			Conversion: conversion,
		})
	}

	if first > 0 {
		funnel.OverallConversion = int(math.Round(float64(counts["export_success"]) / float64(first) * 100))
	}

	return funnel, nil
}

// GetTimeseries reports per-day event counts over [from, to].
func (d *Database) GetTimeseries(ctx context.Context, from, to string) ([]TimeseriesRow, error) {
	start := time.Now()
	from, to = normalizeRange(from, to)

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(opCtx,
		`SELECT substr(timestamp, 1, 10) AS day, event, COUNT(*)
		 FROM events
		 WHERE timestamp >= ? AND timestamp <= ?
		 GROUP BY day, event
		 ORDER BY day, event`,
		from, to,
	)
	metrics.RecordDBQuery("timeseries", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeseries: %w", err)
	}
	defer rows.Close()

	var result []TimeseriesRow
	for rows.Next() {
		var row TimeseriesRow
		if err := rows.Scan(&row.Day, &row.Event, &row.Count); err != nil {
			return nil, fmt.Errorf("failed to scan timeseries row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read timeseries rows: %w", err)
	}

	return result, nil
}

// GetRecentErrors returns the newest error-like events, most recent
// first.
func (d *Database) GetRecentErrors(ctx context.Context, limit int) ([]Event, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 20
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(opCtx,
		`SELECT id, event, session_id, payload, timestamp
		 FROM events
		 WHERE event LIKE '%error%' OR event LIKE '%failed%'
		 ORDER BY timestamp DESC
		 LIMIT ?`,
		limit,
	)
	metrics.RecordDBQuery("recent_errors", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent errors: %w", err)
	}
	defer rows.Close()

	var result []Event
	for rows.Next() {
		var e Event
		var payload string
		if err := rows.Scan(&e.ID, &e.Event, &e.SessionID, &payload, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan error event: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
			e.Payload = map[string]any{"raw": payload}
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read error events: %w", err)
	}

	return result, nil
}
