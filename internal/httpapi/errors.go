package httpapi

import (
	"encoding/json"
	"net/http"

	"gptbridge/internal/batch"
	"gptbridge/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps adapter errors to HTTP status codes.
func statusFor(err error) int {
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	switch {
	case batch.IsInvalidInput(err):
		return http.StatusBadRequest
	case batch.IsConfiguration(err):
		return http.StatusServiceUnavailable
	case batch.IsProcessExecution(err), batch.IsMalformedResponse(err), batch.IsIncompleteResponse(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
