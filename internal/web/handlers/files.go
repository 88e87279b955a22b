package handlers

import (
	"errors"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/adproof/internal/storage"
)

// FilesHandler serves objects from the file store.
type FilesHandler struct {
	store *storage.FileStore
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(store *storage.FileStore) *FilesHandler {
	return &FilesHandler{store: store}
}

// Serve returns the stored object named by the wildcard path
func (h *FilesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	data, err := h.store.Read(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "file not found")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid file path")
		return
	}

	contentType := http.DetectContentType(data)
	if path.Ext(key) == ".svg" {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
