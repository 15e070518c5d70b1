package api

import (
	"encoding/json"
	"errors"
	"net/http"

	fortserr "github.com/amterp/forts/internal/errors"
	"github.com/amterp/forts/internal/flow"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case fortserr.IsNotFound(err):
		return http.StatusNotFound
	case fortserr.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, flow.ErrInFlight), errors.Is(err, flow.ErrFinished):
		return http.StatusConflict
	case errors.Is(err, flow.ErrNotConfirmed):
		return http.StatusPreconditionRequired
	default:
		return http.StatusInternalServerError
	}
}

// Error writes an error response, mapping domain errors to HTTP status codes.
// Validation failures carry a per-field message map.
func Error(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	var verrs fortserr.ValidationErrors
	var verr *fortserr.ValidationError
	switch {
	case errors.As(err, &verrs):
		resp.Fields = verrs.ByField()
	case errors.As(err, &verr):
		resp.Fields = map[string]string{verr.Field: verr.Message}
	}

	// Store internals stay in the logs.
	if status == http.StatusInternalServerError && fortserr.IsStoreError(err) {
		resp.Error = "storage error"
	}

	JSON(w, status, resp)
}

// BadRequest writes a 400 error with the given message.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
}
