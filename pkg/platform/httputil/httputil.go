// Package httputil holds the JSON response helpers shared by HTTP handlers.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "contactbook/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into a status and an {"error": message} body.
// Internal errors never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := ToHTTPStatus(code)

	message := dErrors.MessageOf(err)
	if status >= http.StatusInternalServerError || message == "" {
		message = http.StatusText(status)
	}
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// ToHTTPStatus maps an error code to an HTTP status.
// Uniqueness conflicts are reported as 400 on the public API.
func ToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest,
		dErrors.CodeInvalidInput,
		dErrors.CodeValidation,
		dErrors.CodeInvariantViolation,
		dErrors.CodeConflict:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
