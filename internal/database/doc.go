// Package database provides the SQLite-backed analytics event store.
//
// It handles storage and retrieval of:
//   - Ingested analytics events (name, session, payload, timestamps)
//   - Dashboard aggregates: summary counts, session funnel, per-day
//     timeseries, recent errors
//
// The database uses WAL mode for improved concurrent read performance
// and includes automatic schema initialization. Event timestamps are
// stored as RFC 3339 text so range filters compare lexicographically.
package database
