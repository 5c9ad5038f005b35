// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - DATA_DIR: Path to the data directory holding the event store (default: /data)
//   - WORK_DIR: Engine scratch directory (default: a private temporary directory)
//   - FFMPEG_PATH: Path to the ffmpeg binary (default: ffmpeg, resolved via PATH)
//   - FFPROBE_PATH: Path to the ffprobe binary (default: ffprobe)
//   - FFMPEG_THREADS: Encoder thread count override (default: derived from CPUs)
//   - DEMO_FILE: Path to the bundled demo clip (default: none)
//   - MAX_UPLOAD_MB: Upload size limit in megabytes (default: 50)
//   - POSTER_MAX_WIDTH: Maximum poster frame width in pixels (default: 640)
//   - RETAIN_EVENTS: Number of analytics events to keep (default: 100000)
//   - PRUNE_INTERVAL: Event pruning interval as Go duration (default: 1h)
//   - ANALYTICS_ENDPOINT: Remote collector URL for pipeline telemetry
//     (default: unset, events go to the local store)
//   - DASHBOARD_USER: Analytics dashboard username (default: admin)
//   - DASHBOARD_PASSWORD: Analytics dashboard password, plain text
//   - DASHBOARD_PASSWORD_HASH: Analytics dashboard bcrypt hash, preferred over
//     the plain password
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent output:
//   - [LogDatabaseInit]: Event store initialization timing
//   - [LogEngineInit]: Export engine setup and FFmpeg availability
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
