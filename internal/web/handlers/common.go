package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/kozaktomas/adproof/internal/database"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondInternal logs err and sends a generic 500.
func respondInternal(w http.ResponseWriter, log zerolog.Logger, msg string, err error) {
	log.Error().Err(err).Msg(msg)
	respondError(w, http.StatusInternalServerError, msg)
}

// respondStoreError maps a store lookup failure to 503 when the database is
// not configured and to 500 otherwise.
func respondStoreError(w http.ResponseWriter, log zerolog.Logger, err error) {
	if !database.IsInitialized() {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondInternal(w, log, "database unavailable", err)
}

// decodeJSON decodes the request body into dst, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return false
	}
	return true
}

// isNotFound reports whether err is a missing-row error from a store.
func isNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}

// urlID returns the "id" URL parameter.
func urlID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"database": database.IsInitialized(),
	})
}
