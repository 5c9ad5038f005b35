package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"autocut/internal/clip"
	"autocut/internal/engine"
	"autocut/internal/export"
	"autocut/internal/mediatypes"
)

func exportRequest(t *testing.T, filename string, fields map[string]string) *http.Request {
	t.Helper()

	body, contentType := multipartBody(t, filename, []byte("fake media bytes"), fields)
	req := httptest.NewRequest(http.MethodPost, "/api/export", body)
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestExportClipSuccess(t *testing.T) {
	exporter := &fakeExporter{
		result: &export.Result{
			Data:        []byte("clip bytes"),
			Filename:    "autocut_clip_1700000000000.mp4",
			ContentType: "video/mp4",
			Duration:    6.0,
			Strategy:    clip.CopyTrim,
		},
	}
	h := newTestHandlers(t, exporter)

	req := exportRequest(t, "holiday.mp4", map[string]string{
		"start": "2",
		"end":   "8",
	})
	rec := httptest.NewRecorder()
	h.ExportClip(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Content-Type = %q, want video/mp4", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="autocut_clip_1700000000000.mp4"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), []byte("clip bytes")) {
		t.Error("body does not match exported clip")
	}

	if exporter.lastReq == nil {
		t.Fatal("exporter was not called")
	}
	if exporter.lastReq.Start != 2 || exporter.lastReq.End != 8 {
		t.Errorf("markers = [%v, %v], want [2, 8]", exporter.lastReq.Start, exporter.lastReq.End)
	}
	if exporter.lastReq.Duration != 10.0 {
		t.Errorf("Duration = %v, want probed 10.0", exporter.lastReq.Duration)
	}
	if exporter.lastReq.SourceWidth != 1280 || exporter.lastReq.SourceHeight != 720 {
		t.Errorf("source size = %dx%d, want 1280x720", exporter.lastReq.SourceWidth, exporter.lastReq.SourceHeight)
	}
	if exporter.lastReq.Kind != mediatypes.KindVideo {
		t.Errorf("Kind = %v, want video", exporter.lastReq.Kind)
	}
	if exporter.lastReq.Codec != "h264" {
		t.Errorf("Codec = %q, want probed h264", exporter.lastReq.Codec)
	}
	if exporter.lastReq.Vertical {
		t.Error("Vertical = true without the form field")
	}
}

func TestExportClipVertical(t *testing.T) {
	exporter := &fakeExporter{
		result: &export.Result{
			Data:        []byte("x"),
			Filename:    "autocut_clip_1.mp4",
			ContentType: "video/mp4",
		},
	}
	h := newTestHandlers(t, exporter)

	req := exportRequest(t, "holiday.mp4", map[string]string{
		"start":    "0",
		"end":      "5",
		"vertical": "true",
	})
	rec := httptest.NewRecorder()
	h.ExportClip(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !exporter.lastReq.Vertical {
		t.Error("Vertical = false, want true")
	}
}

func TestExportClipBusy(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{err: export.ErrBusy})

	req := exportRequest(t, "a.mp4", map[string]string{"start": "0", "end": "1"})
	rec := httptest.NewRecorder()
	h.ExportClip(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header not set")
	}
}

func TestExportClipValidationError(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{err: &export.ValidationError{Reason: "end marker before start marker"}})

	req := exportRequest(t, "a.mp4", map[string]string{"start": "8", "end": "2"})
	rec := httptest.NewRecorder()
	h.ExportClip(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExportClipEngineFailure(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{err: &export.EncodeError{Err: errors.New("exit status 1")}})

	req := exportRequest(t, "a.mp4", map[string]string{"start": "0", "end": "1"})
	rec := httptest.NewRecorder()
	h.ExportClip(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body map[string]string
	decodeJSONBody(t, rec.Body, &body)
	if body["error"] != "processing failed" {
		t.Errorf("error = %q, want the user-facing message", body["error"])
	}
}

func TestExportClipUnsupportedType(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{})

	req := exportRequest(t, "notes.txt", map[string]string{"start": "0", "end": "1"})
	rec := httptest.NewRecorder()
	h.ExportClip(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func TestExportClipBadMarkers(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"Missing start", map[string]string{"end": "5"}},
		{"Missing end", map[string]string{"start": "0"}},
		{"Non-numeric start", map[string]string{"start": "abc", "end": "5"}},
		{"NaN start", map[string]string{"start": "NaN", "end": "5"}},
		{"NaN end", map[string]string{"start": "0", "end": "nan"}},
		{"Infinite end", map[string]string{"start": "0", "end": "+Inf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := &fakeExporter{}
			h := newTestHandlers(t, exporter)

			rec := httptest.NewRecorder()
			h.ExportClip(rec, exportRequest(t, "a.mp4", tt.fields))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if exporter.lastReq != nil {
				t.Error("exporter called despite invalid markers")
			}
		})
	}
}

func TestExportClipMissingFile(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{})

	body := bytes.NewBufferString("start=0&end=1")
	req := httptest.NewRequest(http.MethodPost, "/api/export", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ExportClip(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExportClipProbeFailure(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{})
	h.probe = func(context.Context, string, string) (*engine.MediaInfo, error) {
		return nil, fmt.Errorf("no streams found")
	}

	req := exportRequest(t, "a.mp4", map[string]string{"start": "0", "end": "1"})
	rec := httptest.NewRecorder()
	h.ExportClip(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestExportProgress(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{snapshot: export.Snapshot{State: "encoding", Percent: 55}})

	rec := httptest.NewRecorder()
	h.ExportProgress(rec, httptest.NewRequest(http.MethodGet, "/api/export/progress", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var snapshot export.Snapshot
	decodeJSONBody(t, rec.Body, &snapshot)
	if snapshot.State != "encoding" || snapshot.Percent != 55 {
		t.Errorf("snapshot = %+v, want encoding at 55", snapshot)
	}
}

func TestInspectMedia(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{})

	body, contentType := multipartBody(t, "holiday.mp4", []byte("fake"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/probe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.InspectMedia(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var info engine.MediaInfo
	decodeJSONBody(t, rec.Body, &info)
	if info.Duration != 10.0 || info.Width != 1280 || info.Kind != mediatypes.KindVideo {
		t.Errorf("info = %+v", info)
	}
}

func TestGeneratePosterMissingFile(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{})

	body := bytes.NewBufferString("at=1")
	req := httptest.NewRequest(http.MethodPost, "/api/poster", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.GeneratePoster(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGeneratePosterBadTimestamp(t *testing.T) {
	h := newTestHandlers(t, &fakeExporter{})

	body, contentType := multipartBody(t, "a.mp4", []byte("fake"), map[string]string{"at": "-3"})
	req := httptest.NewRequest(http.MethodPost, "/api/poster", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.GeneratePoster(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
