// Package streaming provides timeout-protected delivery of exported
// clip bytes to HTTP clients.
//
// A finished export can be tens of megabytes; a client on a slow or
// stalled connection must not pin the response goroutine forever. The
// download writer enforces a per-write timeout and chunks large
// payloads so a disconnect is detected promptly.
package streaming
