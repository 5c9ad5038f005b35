package handlers

import (
	"errors"
	"io"
	"net/http"

	"autocut/internal/logging"
)

// InspectMedia probes an uploaded file and returns its duration,
// dimensions, codec, and kind without exporting anything. Clients use
// it to seed the trim markers after a file is selected.
func (h *Handlers) InspectMedia(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, info)
}
