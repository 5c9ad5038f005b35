package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeStub creates a fake ffmpeg/ffprobe executable for loader tests.
func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("failed to write stub %s: %v", name, err)
	}
	return path
}

func TestEnsureIdempotent(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "ffmpeg", "exit 0")

	loader := NewLoader(Config{
		FFmpegPath:  stub,
		FFprobePath: stub,
		WorkDir:     filepath.Join(dir, "work"),
	})

	first, err := loader.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	second, err := loader.Ensure(context.Background())
	if err != nil {
		t.Fatalf("second Ensure() error = %v", err)
	}

	if first != second {
		t.Error("Ensure() returned a different handle on the second call")
	}
}

func TestEnsureFailureNotCached(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "ready")

	// Fails until the marker file appears, simulating a transient
	// initialization failure.
	stub := writeStub(t, dir, "ffmpeg", fmt.Sprintf("[ -e %s ] || exit 1\nexit 0", marker))

	loader := NewLoader(Config{
		FFmpegPath:  stub,
		FFprobePath: stub,
		WorkDir:     filepath.Join(dir, "work"),
	})

	if _, err := loader.Ensure(context.Background()); err == nil {
		t.Fatal("Ensure() expected error before marker exists")
	}

	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		t.Fatalf("failed to write marker: %v", err)
	}

	handle, err := loader.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure() after transient failure = %v, want success", err)
	}
	if handle == nil {
		t.Fatal("Ensure() returned nil handle")
	}
}

func TestEnsureMissingBinary(t *testing.T) {
	loader := NewLoader(Config{
		FFmpegPath:  "/nonexistent/ffmpeg",
		FFprobePath: "/nonexistent/ffprobe",
		WorkDir:     t.TempDir(),
	})

	if _, err := loader.Ensure(context.Background()); err == nil {
		t.Fatal("Ensure() expected error for missing binary")
	}
}

func TestRunReportsProgress(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "ffmpeg",
		"echo 'out_time_us=3000000'\necho 'progress=end'\nexit 0")

	var reported []int
	h := &Handle{
		ffmpegPath: stub,
		workDir:    dir,
		onProgress: func(pct int) { reported = append(reported, pct) },
	}

	if err := h.Run(context.Background(), []string{"-i", "in.mp4", "-y", "out.mp4"}, 6*time.Second); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(reported) != 2 || reported[0] != 50 || reported[1] != 100 {
		t.Errorf("reported progress = %v, want [50 100]", reported)
	}
}

func TestRunDeliversFinalProgressBeforeReturn(t *testing.T) {
	dir := t.TempDir()
	// The stub exits immediately after its last progress line, so the
	// final report is only guaranteed if Run drains the pipe before
	// waiting on the process.
	stub := writeStub(t, dir, "ffmpeg",
		"echo 'out_time_us=1000000'\necho 'out_time_us=2000000'\necho 'progress=end'\nexit 0")

	var reported []int
	h := &Handle{
		ffmpegPath: stub,
		workDir:    dir,
		onProgress: func(pct int) { reported = append(reported, pct) },
	}

	if err := h.Run(context.Background(), []string{"-i", "in.mp4", "-y", "out.mp4"}, 4*time.Second); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(reported) == 0 || reported[len(reported)-1] != 100 {
		t.Errorf("reported progress = %v, want final report of 100", reported)
	}
}

func TestRunFailureSurfacesEngineError(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "ffmpeg",
		"echo 'in.mp4: Invalid data found when processing input' >&2\nexit 1")

	var engineErr string
	h := &Handle{
		ffmpegPath: stub,
		workDir:    dir,
		onError:    func(msg string) { engineErr = msg },
	}

	err := h.Run(context.Background(), []string{"-i", "in.mp4", "-y", "out.mp4"}, time.Second)
	if err == nil {
		t.Fatal("Run() expected error, got nil")
	}

	if !strings.Contains(engineErr, "Invalid data") {
		t.Errorf("engine error sink got %q, want stderr detail", engineErr)
	}
	if !strings.Contains(err.Error(), "Invalid data") {
		t.Errorf("Run() error %q does not include stderr detail", err)
	}
}

func TestTailLines(t *testing.T) {
	in := "one\n\ntwo\nthree\nfour\n"
	if got := tailLines(in, 2); got != "three | four" {
		t.Errorf("tailLines() = %q, want %q", got, "three | four")
	}
	if got := tailLines("only", 5); got != "only" {
		t.Errorf("tailLines() = %q, want %q", got, "only")
	}
}
