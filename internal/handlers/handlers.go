package handlers

import (
	"context"
	"time"

	"autocut/internal/database"
	"autocut/internal/engine"
	"autocut/internal/export"
	"autocut/internal/media"
	"autocut/internal/startup"
	"autocut/internal/streaming"
)

// Exporter runs the clip export pipeline. Satisfied by
// export.Orchestrator.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (*export.Result, error)
	Status() export.Snapshot
}

// probeFunc inspects a media file on disk. Overridable in tests.
type probeFunc func(ctx context.Context, ffprobePath, filePath string) (*engine.MediaInfo, error)

type Handlers struct {
	db       *database.Database
	exporter Exporter
	poster   *media.PosterGenerator
	probe    probeFunc

	ffprobePath    string
	demoFile       string
	maxUploadBytes int64
	download       streaming.DownloadConfig

	startTime time.Time
}

func New(db *database.Database, exporter Exporter, config *startup.Config) *Handlers {
	return &Handlers{
		db:             db,
		exporter:       exporter,
		poster:         media.NewPosterGenerator(config.FFmpegPath, config.PosterMaxWidth),
		probe:          engine.Probe,
		ffprobePath:    config.FFprobePath,
		demoFile:       config.DemoFile,
		maxUploadBytes: config.MaxUploadBytes,
		download:       streaming.DefaultDownloadConfig(),
		startTime:      time.Now(),
	}
}
