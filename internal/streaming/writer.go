package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"autocut/internal/logging"
)

// Sentinel errors for download streaming.
var (
	// ErrWriteTimeout indicates that a write exceeded the configured
	// timeout, typically because the client is receiving data too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates that the client disconnected before the
	// download completed, detected via request context cancellation.
	ErrClientGone = errors.New("client disconnected")
)

// DownloadConfig configures the download writer behavior.
type DownloadConfig struct {
	// WriteTimeout is the maximum time to wait for a single write.
	WriteTimeout time.Duration
	// ChunkSize is the size of chunks to write.
	ChunkSize int
}

// DefaultDownloadConfig returns sensible defaults for clip downloads.
func DefaultDownloadConfig() DownloadConfig {
	return DownloadConfig{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    256 * 1024,
	}
}

// downloadWriter wraps an http.ResponseWriter with per-write timeout
// protection and chunked flushing.
type downloadWriter struct {
	w       http.ResponseWriter
	ctx     context.Context
	config  DownloadConfig
	flusher http.Flusher
	written int64
}

// Write implements io.Writer with timeout protection.
func (dw *downloadWriter) Write(p []byte) (int, error) {
	total := 0

	for len(p) > 0 {
		select {
		case <-dw.ctx.Done():
			return total, ErrClientGone
		default:
		}

		chunk := len(p)
		if dw.config.ChunkSize > 0 && chunk > dw.config.ChunkSize {
			chunk = dw.config.ChunkSize
		}

		n, err := dw.writeWithTimeout(p[:chunk])
		total += n
		if err != nil {
			return total, err
		}

		p = p[chunk:]

		if dw.flusher != nil {
			dw.flusher.Flush()
		}
	}

	return total, nil
}

func (dw *downloadWriter) writeWithTimeout(p []byte) (int, error) {
	type writeResult struct {
		n   int
		err error
	}
	resultCh := make(chan writeResult, 1)

	go func() {
		n, err := dw.w.Write(p)
		resultCh <- writeResult{n, err}
	}()

	timeout := dw.config.WriteTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		dw.written += int64(result.n)
		return result.n, result.err
	case <-timer.C:
		return 0, ErrWriteTimeout
	case <-dw.ctx.Done():
		return 0, ErrClientGone
	}
}

// Deliver streams payload bytes to an HTTP response with timeout
// protection. It returns nil when the client simply disconnected, since
// there is nothing left to deliver to.
func Deliver(ctx context.Context, w http.ResponseWriter, r io.Reader, config DownloadConfig) error {
	dw := &downloadWriter{
		w:      w,
		ctx:    ctx,
		config: config,
	}
	if flusher, ok := w.(http.Flusher); ok {
		dw.flusher = flusher
	}

	start := time.Now()
	_, err := io.Copy(dw, r)

	logging.Debug("Download stream finished: %d bytes in %v", dw.written, time.Since(start))

	if errors.Is(err, ErrClientGone) {
		logging.Debug("Client disconnected mid-download after %d bytes", dw.written)
		return nil
	}

	return err
}
