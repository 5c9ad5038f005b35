package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"autocut/internal/engine"
	"autocut/internal/export"
	"autocut/internal/logging"
	"autocut/internal/mediatypes"
	"autocut/internal/streaming"
)

// multipartMemoryLimit caps how much of a parsed form is held in
// memory before spilling to disk.
const multipartMemoryLimit = 32 << 20

// ExportClip accepts a multipart upload with trim markers and responds
// with the finished clip as a download.
//
// Form fields:
//   - file: the source media file (required)
//   - start, end: trim markers in seconds (required)
//   - vertical: "true" to reframe video to a vertical 9:16 crop
func (h *Handlers) ExportClip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Allow some slack for the non-file form fields.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemoryLimit)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		if errors.As(err, new(*http.MaxBytesError)) {
			writeJSONError(w, fmt.Sprintf("file exceeds the %d MB upload limit", h.maxUploadBytes>>20), http.StatusRequestEntityTooLarge)
			return
		}
		writeJSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		writeJSONError(w, fmt.Sprintf("file exceeds the %d MB upload limit", h.maxUploadBytes>>20), http.StatusRequestEntityTooLarge)
		return
	}

	kind := mediatypes.Classify(header.Header.Get("Content-Type"), header.Filename)
	if kind == mediatypes.KindUnknown {
		writeJSONError(w, "unsupported media type", http.StatusUnsupportedMediaType)
		return
	}

	start, err := parseSeconds(r.FormValue("start"))
	if err != nil {
		writeJSONError(w, "invalid start marker", http.StatusBadRequest)
		return
	}
	end, err := parseSeconds(r.FormValue("end"))
	if err != nil {
		writeJSONError(w, "invalid end marker", http.StatusBadRequest)
		return
	}
	vertical := r.FormValue("vertical") == "true"

	data, err := io.ReadAll(file)
	if err != nil {
		logging.Error("failed to read upload: %v", err)
		writeJSONError(w, "failed to read upload", http.StatusInternalServerError)
		return
	}

	info, err := h.probeUpload(r, data, header.Filename)
	if err != nil {
		logging.Warn("probe failed for %s: %v", header.Filename, err)
		writeJSONError(w, "could not read media file", http.StatusUnprocessableEntity)
		return
	}

	result, err := h.exporter.Export(ctx, export.Request{
		SourceName:   header.Filename,
		Data:         data,
		Start:        start,
		End:          end,
		Duration:     info.Duration,
		Kind:         kind,
		Codec:        info.Codec,
		Vertical:     vertical,
		SourceWidth:  info.Width,
		SourceHeight: info.Height,
	})
	if err != nil {
		h.writeExportError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("Cache-Control", "no-store")

	if err := streaming.Deliver(ctx, w, bytes.NewReader(result.Data), h.download); err != nil {
		logging.Warn("clip download aborted: %v", err)
	}
}

// ExportProgress reports the current export phase and percentage.
func (h *Handlers) ExportProgress(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, h.exporter.Status())
}

func (h *Handlers) writeExportError(w http.ResponseWriter, err error) {
	var validation *export.ValidationError

	switch {
	case errors.Is(err, export.ErrBusy):
		w.Header().Set("Retry-After", "2")
		writeJSONError(w, "an export is already in progress", http.StatusConflict)
	case errors.As(err, &validation):
		writeJSONError(w, validation.UserMessage(), http.StatusBadRequest)
	default:
		logging.Error("export failed: %v", err)
		writeJSONError(w, export.UserMessage(err), http.StatusInternalServerError)
	}
}

// probeUpload writes the upload to a scratch file and inspects it with
// ffprobe.
func (h *Handlers) probeUpload(r *http.Request, data []byte, name string) (*engine.MediaInfo, error) {
	tmp, err := os.CreateTemp("", "autocut-probe-*"+filepath.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create probe file: %w", err)
	}
	defer func() {
		tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil {
			logging.Warn("failed to remove probe file %s: %v", tmp.Name(), err)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write probe file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush probe file: %w", err)
	}

	return h.probe(r.Context(), h.ffprobePath, tmp.Name())
}

func parseSeconds(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty value")
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	// ParseFloat accepts "NaN" and "Inf", which are never valid markers.
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("value is not a finite number")
	}
	return seconds, nil
}
