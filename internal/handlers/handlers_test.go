package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"autocut/internal/database"
	"autocut/internal/engine"
	"autocut/internal/export"
	"autocut/internal/media"
	"autocut/internal/mediatypes"
	"autocut/internal/streaming"
)

// fakeExporter lets tests script the orchestrator's behavior.
type fakeExporter struct {
	result   *export.Result
	err      error
	snapshot export.Snapshot
	lastReq  *export.Request
}

func (f *fakeExporter) Export(_ context.Context, req export.Request) (*export.Result, error) {
	f.lastReq = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeExporter) Status() export.Snapshot {
	return f.snapshot
}

// newTestHandlers builds a handler set backed by a real event store
// and a scripted exporter. The probe is stubbed to a fixed result.
func newTestHandlers(t *testing.T, exporter *fakeExporter) *Handlers {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "events.db")
	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &Handlers{
		db:       db,
		exporter: exporter,
		poster:   media.NewPosterGenerator("ffmpeg", 640),
		probe: func(_ context.Context, _, _ string) (*engine.MediaInfo, error) {
			return &engine.MediaInfo{
				Duration: 10.0,
				Width:    1280,
				Height:   720,
				Codec:    "h264",
				Kind:     mediatypes.KindVideo,
			}, nil
		},
		maxUploadBytes: 50 << 20,
		download:       streaming.DefaultDownloadConfig(),
		startTime:      time.Now(),
	}
}

// multipartBody builds a multipart form with a file part and extra
// string fields.
func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write file part: %v", err)
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("WriteField(%s) error = %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	return &buf, writer.FormDataContentType()
}

func decodeJSONBody(t *testing.T, body io.Reader, v any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestHealthCheckHealthy(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{snapshot: export.Snapshot{State: "idle"}})

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var response HealthResponse
	decodeJSONBody(t, rec.Body, &response)

	if response.Status != statusHealthy {
		t.Errorf("Status = %q, want %q", response.Status, statusHealthy)
	}
	if response.ExportState != "idle" {
		t.Errorf("ExportState = %q, want idle", response.ExportState)
	}
	if response.GoVersion == "" {
		t.Error("GoVersion not set")
	}
}

func TestLivenessCheck(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{})

	rec := httptest.NewRecorder()
	h.LivenessCheck(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	decodeJSONBody(t, rec.Body, &body)
	if body["status"] != "alive" {
		t.Errorf("status field = %q, want alive", body["status"])
	}
}

func TestLivenessCheckHead(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{})

	rec := httptest.NewRecorder()
	h.LivenessCheck(rec, httptest.NewRequest(http.MethodHead, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD response has body: %q", rec.Body.String())
	}
}

func TestReadinessCheck(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{})

	rec := httptest.NewRecorder()
	h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestGetVersion(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{})

	rec := httptest.NewRecorder()
	h.GetVersion(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	decodeJSONBody(t, rec.Body, &body)
	if body["version"] == "" {
		t.Error("version field not set")
	}
	if body["goVersion"] == "" {
		t.Error("goVersion field not set")
	}
}

func TestDemoClipNotConfigured(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{})

	rec := httptest.NewRecorder()
	h.DemoClip(rec, httptest.NewRequest(http.MethodGet, "/api/demo", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
