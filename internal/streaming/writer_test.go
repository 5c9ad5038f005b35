package streaming

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDeliver(t *testing.T) {
	payload := bytes.Repeat([]byte("abc123"), 100*1024)

	rec := httptest.NewRecorder()
	config := DefaultDownloadConfig()
	config.ChunkSize = 64 * 1024

	err := Deliver(context.Background(), rec, bytes.NewReader(payload), config)
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if !bytes.Equal(rec.Body.Bytes(), payload) {
		t.Errorf("delivered %d bytes, want %d", rec.Body.Len(), len(payload))
	}
}

func TestDeliverClientGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	payload := bytes.Repeat([]byte("x"), 1024*1024)

	// A canceled client is not an error worth surfacing.
	err := Deliver(ctx, rec, bytes.NewReader(payload), DefaultDownloadConfig())
	if err != nil {
		t.Errorf("Deliver() with canceled context = %v, want nil", err)
	}

	if rec.Body.Len() == len(payload) {
		t.Error("expected delivery to stop early on canceled context")
	}
}

type slowWriter struct {
	*httptest.ResponseRecorder
	delay time.Duration
}

func (sw *slowWriter) Write(p []byte) (int, error) {
	time.Sleep(sw.delay)
	return sw.ResponseRecorder.Write(p)
}

func TestDeliverWriteTimeout(t *testing.T) {
	sw := &slowWriter{
		ResponseRecorder: httptest.NewRecorder(),
		delay:            100 * time.Millisecond,
	}

	config := DownloadConfig{
		WriteTimeout: 10 * time.Millisecond,
		ChunkSize:    16,
	}

	err := Deliver(context.Background(), sw, bytes.NewReader([]byte("0123456789abcdef0123")), config)
	if !errors.Is(err, ErrWriteTimeout) {
		t.Fatalf("Deliver() error = %v, want ErrWriteTimeout", err)
	}
}
