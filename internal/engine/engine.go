package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"autocut/internal/logging"
	"autocut/internal/metrics"
)

// Config configures the engine loader.
type Config struct {
	// FFmpegPath is the path to the ffmpeg binary. Empty means resolve
	// from PATH.
	FFmpegPath string
	// FFprobePath is the path to the ffprobe binary. Empty means resolve
	// from PATH.
	FFprobePath string
	// WorkDir is the engine's private working filesystem. Empty means
	// create a temporary directory on first initialization.
	WorkDir string
	// OnProgress receives integer percent values (0-100) during encode
	// operations. Only the callback registered at first initialization
	// stays wired for the lifetime of the handle.
	OnProgress func(percent int)
	// OnEngineError receives error-level engine output when an encode
	// operation fails.
	OnEngineError func(message string)
}

// Loader lazily creates and caches a single engine handle.
//
// A failed initialization is never cached; the next Ensure call retries
// from scratch.
type Loader struct {
	mu      sync.Mutex
	cfg     Config
	handle  *Handle
	ownsDir bool
}

// NewLoader creates a loader with the given configuration.
func NewLoader(cfg Config) *Loader {
	return &Loader{cfg: cfg}
}

// Ensure returns the cached engine handle, initializing it on first
// call. Subsequent calls return the existing handle immediately.
func (l *Loader) Ensure(ctx context.Context) (*Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle != nil {
		return l.handle, nil
	}

	handle, ownsDir, err := l.initialize(ctx)
	if err != nil {
		metrics.EngineInitTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.EngineInitTotal.WithLabelValues("success").Inc()
	l.handle = handle
	l.ownsDir = ownsDir
	return handle, nil
}

func (l *Loader) initialize(ctx context.Context) (*Handle, bool, error) {
	ffmpegPath := l.cfg.FFmpegPath
	if ffmpegPath == "" {
		resolved, err := exec.LookPath("ffmpeg")
		if err != nil {
			return nil, false, fmt.Errorf("resolve ffmpeg binary: %w", err)
		}
		ffmpegPath = resolved
	}

	ffprobePath := l.cfg.FFprobePath
	if ffprobePath == "" {
		resolved, err := exec.LookPath("ffprobe")
		if err != nil {
			return nil, false, fmt.Errorf("resolve ffprobe binary: %w", err)
		}
		ffprobePath = resolved
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpegPath, "-version")
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, false, fmt.Errorf("verify ffmpeg binary: %w - %s", err, strings.TrimSpace(stderr.String()))
	}

	workDir := l.cfg.WorkDir
	ownsDir := false
	if workDir == "" {
		dir, err := os.MkdirTemp("", "autocut-engine-")
		if err != nil {
			return nil, false, fmt.Errorf("create engine work directory: %w", err)
		}
		workDir = dir
		ownsDir = true
	} else if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, false, fmt.Errorf("create engine work directory: %w", err)
	}

	logging.Info("Engine initialized: ffmpeg=%s workdir=%s", ffmpegPath, workDir)

	return &Handle{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		workDir:     workDir,
		onProgress:  l.cfg.OnProgress,
		onError:     l.cfg.OnEngineError,
	}, ownsDir, nil
}

// Close releases the loader's resources. The working filesystem is
// removed only when the loader created it.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle == nil || !l.ownsDir {
		return nil
	}

	dir := l.handle.workDir
	l.handle = nil
	return os.RemoveAll(dir)
}

// Handle is an initialized engine instance with a private working
// filesystem. It is shared across exports within one process session.
type Handle struct {
	ffmpegPath  string
	ffprobePath string
	workDir     string
	onProgress  func(int)
	onError     func(string)
	buffers     sync.Pool
}

// WorkDir returns the engine's working filesystem root.
func (h *Handle) WorkDir() string {
	return h.workDir
}

// path maps a virtual file name into the working filesystem. Names are
// flattened to their base so callers cannot escape the work directory.
func (h *Handle) path(name string) string {
	return filepath.Join(h.workDir, filepath.Base(name))
}

// Run executes an encode operation against the working filesystem.
// window is the expected output duration, used to scale the engine's
// time-based progress reports to a percent.
func (h *Handle) Run(ctx context.Context, args []string, window time.Duration) error {
	full := append([]string{"-hide_banner", "-nostdin", "-progress", "pipe:1"}, args...)

	cmd := exec.CommandContext(ctx, h.ffmpegPath, full...)
	cmd.Dir = h.workDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create progress pipe: %w", err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		forwardProgress(stdout, window, h.onProgress)
	}()

	// The pipe must be drained to EOF before Wait, which closes it.
	<-progressDone
	cmdErr := cmd.Wait()

	if cmdErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		detail := tailLines(stderr.String(), 5)
		logging.Error("FFmpeg stderr: %s", detail)
		if h.onError != nil {
			h.onError(detail)
		}
		return fmt.Errorf("ffmpeg execution failed: %w - %s", cmdErr, detail)
	}

	return nil
}

// tailLines returns the last n non-empty lines of s on a single line.
func tailLines(s string, n int) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
