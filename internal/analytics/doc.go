// Package analytics provides fire-and-forget event tracking.
//
// Events are posted to a collector endpoint with a per-process session
// identifier. Delivery is strictly best effort: one attempt, a single
// retry after a short delay, then the event is dropped silently. The
// primary export flow must never block on or fail because of
// telemetry.
package analytics
