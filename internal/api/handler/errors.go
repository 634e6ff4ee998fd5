package handler

import (
	"net/http"

	"github.com/mcoot/wallwars-go/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest   = apierr.CodeInvalidRequest
	CodeInvalidDocument  = apierr.CodeInvalidDocument
	CodeUnauthorized     = apierr.CodeUnauthorized
	CodePlayerNotFound   = apierr.CodePlayerNotFound
	CodeGameNotFound     = apierr.CodeGameNotFound
	CodeNoResult         = apierr.CodeNoResult
	CodeStoreUnavailable = apierr.CodeStoreUnavailable
	CodeInternalError    = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewNoResultError creates a not-found error for an empty read
func NewNoResultError(message string) error {
	return apierr.NewNoResultError(message)
}
