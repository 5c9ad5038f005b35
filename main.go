package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autocut/internal/analytics"
	"autocut/internal/database"
	"autocut/internal/engine"
	"autocut/internal/export"
	"autocut/internal/handlers"
	"autocut/internal/logging"
	"autocut/internal/memory"
	"autocut/internal/middleware"
	"autocut/internal/startup"
	"autocut/internal/workers"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	// Configure the Go memory limit before anything allocates
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize the analytics event store
	ctx := context.Background()
	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize event store: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Prune old events periodically
	go pruneEvents(db, config.RetainEvents, config.PruneInterval)

	// Initialize the export orchestrator. The engine itself comes up
	// lazily on the first export.
	startup.LogEngineInit(config.FFmpegPath)

	// Pipeline telemetry goes to a remote collector when one is
	// configured, otherwise straight into the local event store.
	var tracker analytics.Tracker = analytics.NewStoreTracker(db)
	if config.AnalyticsEndpoint != "" {
		tracker = analytics.NewClient(config.AnalyticsEndpoint)
	}

	orchestrator := export.New(export.Options{
		Engine: engine.Config{
			FFmpegPath:  config.FFmpegPath,
			FFprobePath: config.FFprobePath,
			WorkDir:     config.WorkDir,
		},
		Tracker: tracker,
		Threads: workers.ForEncode(8),
	})
	defer orchestrator.Close()

	// Initialize handlers
	h := handlers.New(db, orchestrator, config)
	auth := handlers.NewDashboardAuth(config.DashboardUser, config.DashboardPassword, config.DashboardPasswordHash)

	// Setup router
	router := setupRouter(h, auth)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	// Apply metrics middleware
	meteredHandler := middleware.Metrics(middleware.DefaultMetricsConfig())(loggedHandler)

	// Apply compression middleware
	handler := middleware.Compression(middleware.DefaultCompressionConfig())(meteredHandler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Optional metrics server
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, orchestrator)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, auth *handlers.DashboardAuth) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Export API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/export", h.ExportClip).Methods("POST")
	api.HandleFunc("/export/progress", h.ExportProgress).Methods("GET")
	api.HandleFunc("/probe", h.InspectMedia).Methods("POST")
	api.HandleFunc("/poster", h.GeneratePoster).Methods("POST")
	api.HandleFunc("/demo", h.DemoClip).Methods("GET")

	// Analytics ingestion
	api.HandleFunc("/analytics", h.IngestEvent).Methods("POST")

	// Dashboard queries behind basic auth
	events := api.PathPrefix("/events").Subrouter()
	events.Use(auth.Middleware)
	events.HandleFunc("/summary", h.GetSummary).Methods("GET")
	events.HandleFunc("/funnel", h.GetFunnel).Methods("GET")
	events.HandleFunc("/timeseries", h.GetTimeseries).Methods("GET")
	events.HandleFunc("/errors", h.GetRecentErrors).Methods("GET")

	return r
}

func pruneEvents(db *database.Database, keep int64, interval time.Duration) {
	ticker := time.NewTicker(interval)
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		removed, err := db.PruneEvents(ctx, keep)
		cancel()
		if err != nil {
			logging.Warn("Event pruning failed: %v", err)
		} else if removed > 0 {
			logging.Info("Pruned %d old analytics events", removed)
		}
	}
}

func handleShutdown(srv, metricsSrv *http.Server, orchestrator *export.Orchestrator) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Closing export engine")
	if err := orchestrator.Close(); err != nil {
		logging.Warn("Engine cleanup error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Export engine closed")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
