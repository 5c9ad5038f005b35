package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autocut_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autocut_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autocut_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Export pipeline metrics
var (
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autocut_exports_total",
			Help: "Total number of clip exports by outcome",
		},
		[]string{"status", "kind"},
	)

	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autocut_export_duration_seconds",
			Help:    "Wall-clock duration of clip exports in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"strategy"},
	)

	ExportProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autocut_export_progress_percent",
			Help: "Progress of the export currently in flight (0-100)",
		},
	)

	ExportsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autocut_exports_in_flight",
			Help: "Number of exports currently being processed (0 or 1)",
		},
	)

	EngineInitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autocut_engine_init_total",
			Help: "Total number of engine initialization attempts",
		},
		[]string{"status"},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autocut_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autocut_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Analytics metrics
var (
	AnalyticsEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autocut_analytics_events_total",
			Help: "Total number of analytics events ingested",
		},
		[]string{"event"},
	)

	AnalyticsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "autocut_analytics_rejected_total",
			Help: "Total number of analytics events rejected at ingest",
		},
	)
)

// RecordDBQuery records a database query's outcome and duration.
func RecordDBQuery(operation string, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DBQueryTotal.WithLabelValues(operation, status).Inc()
	DBQueryDuration.WithLabelValues(operation).Observe(seconds)
}
