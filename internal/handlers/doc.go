// Package handlers implements the HTTP API of the clip export service.
//
// The API has three groups of endpoints:
//
//   - Export: upload a media file with trim markers and download the
//     resulting clip, plus progress polling, probing, and poster
//     frame generation.
//   - Analytics: event ingestion from clients and the aggregated
//     dashboard queries (summary, funnel, timeseries, recent errors).
//     The dashboard queries sit behind HTTP basic auth.
//   - Operations: health, liveness, readiness, and version endpoints.
package handlers
