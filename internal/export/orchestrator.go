package export

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"autocut/internal/analytics"
	"autocut/internal/clip"
	"autocut/internal/engine"
	"autocut/internal/logging"
	"autocut/internal/mediatypes"
	"autocut/internal/metrics"
)

// defaultResetDelay is how long a finished export's progress stays
// visible before the display resets to idle.
const defaultResetDelay = 900 * time.Millisecond

// Engine is the subset of the engine handle the orchestrator drives.
// The virtual file bridge operates on the same value.
type Engine interface {
	Run(ctx context.Context, args []string, window time.Duration) error
}

// Request carries everything needed for one export attempt. It is
// constructed fresh per attempt and never persisted.
type Request struct {
	// SourceName is the input's name inside the engine filesystem.
	SourceName string
	// Data is the full byte content of the source.
	Data []byte
	// Start and End are the trim markers in seconds.
	Start float64
	End   float64
	// Duration is the probed duration of the source in seconds.
	Duration float64
	Kind     mediatypes.Kind
	// Codec is the probed codec of the primary stream. It picks the
	// output container on the audio copy path.
	Codec    string
	Vertical bool
	// SourceWidth and SourceHeight are the probed frame dimensions.
	SourceWidth  int
	SourceHeight int
}

// Result is a completed export packaged for download.
type Result struct {
	Data        []byte
	Filename    string
	ContentType string
	// Duration is the output clip length in seconds.
	Duration float64
	Strategy clip.Strategy
}

// Options configures an Orchestrator.
type Options struct {
	// Engine configures the lazily-initialized engine loader. The
	// progress and error callbacks are owned by the orchestrator and
	// must be left unset.
	Engine engine.Config
	// Tracker receives observability events. Nil disables telemetry.
	Tracker analytics.Tracker
	// Threads caps the encoder thread count on the re-encode path.
	Threads int
	// ResetDelay overrides how long progress stays visible after an
	// export finishes. Zero means the default.
	ResetDelay time.Duration
}

// Orchestrator runs the export pipeline. It owns the engine loader and
// the export status, and enforces the one-export-at-a-time rule.
type Orchestrator struct {
	ensure     func(ctx context.Context) (Engine, error)
	loader     *engine.Loader
	tracker    analytics.Tracker
	status     Status
	threads    int
	resetDelay time.Duration

	mu       sync.Mutex
	inFlight bool
	kind     mediatypes.Kind
	vertical bool
}

// New creates an orchestrator with a lazily-initialized engine.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		tracker:    opts.Tracker,
		threads:    opts.Threads,
		resetDelay: opts.ResetDelay,
	}
	if o.tracker == nil {
		o.tracker = analytics.Noop{}
	}
	if o.resetDelay <= 0 {
		o.resetDelay = defaultResetDelay
	}

	engCfg := opts.Engine
	engCfg.OnProgress = o.status.Advance
	engCfg.OnEngineError = o.engineError

	o.loader = engine.NewLoader(engCfg)
	o.ensure = func(ctx context.Context) (Engine, error) {
		return o.loader.Ensure(ctx)
	}
	return o
}

// Close releases the engine loader's resources.
func (o *Orchestrator) Close() error {
	if o.loader == nil {
		return nil
	}
	return o.loader.Close()
}

// Status returns a snapshot of the export in flight (or the last one,
// until its display resets).
func (o *Orchestrator) Status() Snapshot {
	return o.status.Snapshot()
}

// engineError forwards error-level engine output to observability,
// tagged with the current export's media kind and reframe flag.
func (o *Orchestrator) engineError(message string) {
	o.mu.Lock()
	kind, vertical := o.kind, o.vertical
	o.mu.Unlock()

	o.tracker.Track("ffmpeg_worker_error", map[string]any{
		"error":    message,
		"kind":     string(kind),
		"vertical": vertical,
	})
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validate(req Request) error {
	if len(req.Data) == 0 {
		return &ValidationError{Reason: "no media source loaded"}
	}
	// NaN compares false against every bound below, so non-finite
	// values have to be rejected explicitly.
	if !isFinite(req.Start) || !isFinite(req.End) || !isFinite(req.Duration) {
		return &ValidationError{Reason: "markers must be finite numbers"}
	}
	if req.Duration <= 0 {
		return &ValidationError{Reason: "media duration is invalid"}
	}
	if req.End <= req.Start {
		return &ValidationError{Reason: "end marker must be after the start marker"}
	}
	if req.Start < 0 || req.End > req.Duration {
		return &ValidationError{Reason: "markers are outside the media duration"}
	}
	if req.Kind != mediatypes.KindAudio && req.Kind != mediatypes.KindVideo {
		return &ValidationError{Reason: "unsupported media kind"}
	}
	return nil
}

// Export runs the full pipeline for one request. Validation failures
// return a ValidationError without touching the engine; a concurrent
// export returns ErrBusy. All other failures abort the state machine
// with a terminal failed state.
func (o *Orchestrator) Export(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.inFlight = true
	o.kind = req.Kind
	o.vertical = req.Vertical
	o.mu.Unlock()

	metrics.ExportsInFlight.Set(1)
	gen := o.status.Begin()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
		metrics.ExportsInFlight.Set(0)

		time.AfterFunc(o.resetDelay, func() {
			o.status.ResetIfCurrent(gen)
		})
	}()

	started := time.Now()
	strategy := clip.StrategyFor(req.Kind, req.Vertical)

	o.tracker.Track("export_started", map[string]any{
		"kind":         string(req.Kind),
		"vertical":     req.Vertical,
		"clip_seconds": req.End - req.Start,
	})

	eng, err := o.ensure(ctx)
	if err != nil {
		o.tracker.Track("ffmpeg_init_error", map[string]any{"error": err.Error()})
		return nil, o.fail(req, &InitError{Err: err})
	}
	o.status.Advance(10)

	o.status.SetState(StateWriting)
	if err := engine.WriteInput(eng, req.SourceName, req.Data); err != nil {
		return nil, o.fail(req, &IOError{Op: "write", Err: err})
	}
	o.status.Advance(20)

	o.status.SetState(StateEncoding)
	ext, contentType := mediatypes.OutputFormat(req.Kind, req.Codec)
	creq := clip.Request{
		InputName:    req.SourceName,
		OutputName:   outputName(ext),
		Start:        req.Start,
		End:          req.End,
		Kind:         req.Kind,
		Vertical:     req.Vertical,
		SourceWidth:  req.SourceWidth,
		SourceHeight: req.SourceHeight,
		Threads:      o.threads,
	}
	window := creq.Window()

	if err := eng.Run(ctx, clip.BuildArgs(creq), window); err != nil {
		return nil, o.fail(req, &EncodeError{Err: err})
	}

	o.status.SetState(StateReading)
	data, err := engine.ReadOutput(eng, creq.OutputName)
	if err != nil {
		return nil, o.fail(req, &IOError{Op: "read", Err: err})
	}

	o.status.SetState(StatePackaging)
	result := &Result{
		Data:        data,
		Filename:    creq.OutputName,
		ContentType: contentType,
		Duration:    window.Seconds(),
		Strategy:    strategy,
	}

	o.status.Advance(100)
	o.status.SetState(StateDone)

	elapsed := time.Since(started)
	o.tracker.Track("export_success", map[string]any{
		"kind":           string(req.Kind),
		"vertical":       req.Vertical,
		"output_seconds": result.Duration,
		"duration_ms":    elapsed.Milliseconds(),
	})
	metrics.ExportsTotal.WithLabelValues("success", string(req.Kind)).Inc()
	metrics.ExportDuration.WithLabelValues(strategy.String()).Observe(elapsed.Seconds())

	logging.Info("Export complete: %s (%s, %.2fs clip) in %v",
		result.Filename, strategy, result.Duration, elapsed)

	return result, nil
}

// fail moves the machine to the terminal failed state and records the
// failure. It returns err unchanged for the caller to propagate.
func (o *Orchestrator) fail(req Request, err error) error {
	message := UserMessage(err)
	o.status.Fail(message)

	o.tracker.Track("export_failed", map[string]any{
		"error":    err.Error(),
		"message":  message,
		"kind":     string(req.Kind),
		"vertical": req.Vertical,
	})
	metrics.ExportsTotal.WithLabelValues("failed", string(req.Kind)).Inc()

	logging.Error("Export failed: %v", err)
	return err
}

// outputName builds a per-export unique output file name so leftovers
// from a prior run can never be served by mistake.
func outputName(ext string) string {
	return fmt.Sprintf("autocut_clip_%d.%s", time.Now().UnixMilli(), ext)
}
