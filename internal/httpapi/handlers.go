package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dsjohal14/ledgerwal/internal/journal"
	"github.com/rs/zerolog"
)

// Handler contains HTTP handlers for the journal admin API.
type Handler struct {
	j      *journal.Journal
	logger zerolog.Logger
}

// NewHandler creates a new HTTP handler over a running Journal.
func NewHandler(j *journal.Journal, logger zerolog.Logger) *Handler {
	return &Handler{j: j, logger: logger}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// statusFor maps a journal error kind to an HTTP status code (SPEC_FULL.md
// §7: callers use errors.As to translate a kind to an exit code / status).
func statusFor(err error) int {
	var validationErr *journal.ValidationError
	var configErr *journal.ConfigError
	var stateErr *journal.StateError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &configErr):
		return http.StatusBadRequest
	case errors.As(err, &stateErr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
