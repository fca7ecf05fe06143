package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	recordingsDir  = "recordings"
	maxUploadBytes = 50 << 20 // 50 MB
)

// RecordingHandler serves and accepts voice-memo files. Recordings live in
// a dedicated folder under the vault so Obsidian can embed them, but they
// never enter the day index.
type RecordingHandler struct {
	vaultRoot string
}

// NewRecordingHandler creates a handler rooted at the vault directory.
func NewRecordingHandler(vaultRoot string) *RecordingHandler {
	return &RecordingHandler{vaultRoot: vaultRoot}
}

func (h *RecordingHandler) dir() string {
	return filepath.Join(h.vaultRoot, recordingsDir)
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal) and returns the absolute path under the recordings dir.
func (h *RecordingHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(h.dir(), cleaned)
	// Double-check the resolved path is under the recordings dir.
	if !strings.HasPrefix(abs, h.dir()+string(os.PathSeparator)) && abs != h.dir() {
		return "", fmt.Errorf("path escapes recordings directory")
	}
	return abs, nil
}

// ServeFile handles GET /recordings/{filename}.
func (h *RecordingHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	abs, err := h.safeName(filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /api/recordings (multipart/form-data, field "file").
func (h *RecordingHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	abs, err := h.safeName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	if err := os.MkdirAll(h.dir(), 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to create recordings dir"))
		return
	}

	dst, err := os.Create(abs)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to create file"))
		return
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to write file"))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"filename": header.Filename,
		"size":     written,
		"url":      "/recordings/" + header.Filename,
	})
}
