package httpx

import (
	"fmt"
	"net/http"
)

// Error codes shared across the API surface.
const (
	ErrorCodeInvalidRequest  = "invalid_request"
	ErrorCodeValidation      = "validation_error"
	ErrorCodeInvalidToken    = "invalid_token"
	ErrorCodeInvalidGrant    = "invalid_grant"
	ErrorCodeNotFound        = "not_found"
	ErrorCodeConflict        = "conflict"
	ErrorCodeForbidden       = "forbidden"
	ErrorCodeTooManyRequests = "rate_limit_exceeded"
	ErrorCodeServerError     = "server_error"
)

// APIError is the JSON error shape every endpoint returns. It implements the
// error interface so handlers can both return and write it.
type APIError struct {
	// StatusCode is the HTTP status for this error, not serialized.
	StatusCode int `json:"-"`

	// Code is a stable machine-readable error code.
	Code string `json:"error"`

	// Description is a human-readable explanation.
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e to the response writer as JSON.
func (e *APIError) WriteError(w http.ResponseWriter) {
	WriteJSON(w, e.StatusCode, e)
}

// NewAPIError builds an APIError in one line.
func NewAPIError(status int, code, description string) *APIError {
	return &APIError{StatusCode: status, Code: code, Description: description}
}

var (
	// ErrMalformedBody is returned when a request body cannot be decoded.
	ErrMalformedBody = NewAPIError(http.StatusBadRequest, ErrorCodeInvalidRequest,
		"the request body is malformed or missing required fields")

	// ErrInternal hides internal failures from the client.
	ErrInternal = NewAPIError(http.StatusInternalServerError, ErrorCodeServerError,
		"an internal error occurred")
)
