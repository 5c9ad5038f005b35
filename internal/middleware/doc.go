// Package middleware provides HTTP middleware for the clip export service.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics
//   - Response compression (gzip) for the JSON dashboard endpoints
package middleware
