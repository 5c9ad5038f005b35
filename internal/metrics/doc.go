// Package metrics defines Prometheus collectors for the clip export
// service.
//
// Metrics cover:
//   - HTTP request counts, durations, and in-flight gauge
//   - Export pipeline outcomes, durations, and live progress
//   - Database query counts and durations
//   - Analytics event ingestion
//
// All collectors are registered with the default registry via promauto
// and exposed on /metrics.
package metrics
