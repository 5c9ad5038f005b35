package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"autocut/internal/logging"
)

// GeneratePoster extracts a single frame from an uploaded video and
// returns it as a JPEG. The optional "at" form field selects the
// timestamp in seconds, defaulting to the start of the file.
func (h *Handlers) GeneratePoster(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemoryLimit)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		if errors.As(err, new(*http.MaxBytesError)) {
			writeJSONError(w, "file exceeds the upload limit", http.StatusRequestEntityTooLarge)
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

	at := 0.0
	if raw := r.FormValue("at"); raw != "" {
		at, err = strconv.ParseFloat(raw, 64)
		if err != nil || at < 0 {
			writeJSONError(w, "invalid at timestamp", http.StatusBadRequest)
			return
		}
	}

	tmp, err := os.CreateTemp("", "autocut-poster-*"+filepath.Ext(header.Filename))
	if err != nil {
		logging.Error("failed to create poster scratch file: %v", err)
		writeJSONError(w, "failed to process upload", http.StatusInternalServerError)
		return
	}
	defer func() {
		tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil {
			logging.Warn("failed to remove poster scratch file %s: %v", tmp.Name(), err)
		}
	}()

	if _, err := io.Copy(tmp, file); err != nil {
		logging.Error("failed to write poster scratch file: %v", err)
		writeJSONError(w, "failed to process upload", http.StatusInternalServerError)
		return
	}
	if err := tmp.Close(); err != nil {
		logging.Error("failed to flush poster scratch file: %v", err)
		writeJSONError(w, "failed to process upload", http.StatusInternalServerError)
		return
	}

	data, err := h.poster.Poster(r.Context(), tmp.Name(), at)
	if err != nil {
		logging.Warn("poster generation failed for %s: %v", header.Filename, err)
		writeJSONError(w, "could not extract a poster frame", http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(data); err != nil {
		logging.Warn("poster download aborted: %v", err)
	}
}

// DemoClip serves the bundled demo file so clients can try the trimmer
// without uploading anything.
func (h *Handlers) DemoClip(w http.ResponseWriter, r *http.Request) {
	if h.demoFile == "" {
		writeJSONError(w, "no demo clip configured", http.StatusNotFound)
		return
	}
	if _, err := os.Stat(h.demoFile); err != nil {
		logging.Warn("demo file not accessible: %v", err)
		writeJSONError(w, "demo clip unavailable", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, h.demoFile)
}
