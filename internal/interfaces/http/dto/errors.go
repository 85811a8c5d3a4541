package dto

import (
	"net/http"

	"github.com/lemonco/backend/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// External system error codes
const (
	// ErrCodeERPUnavailable is used when the ERP session cannot be established
	ErrCodeERPUnavailable = "ERR_ERP_UNAVAILABLE"
	// ErrCodeERPCommand is used when the ERP rejected or failed a command
	ErrCodeERPCommand = "ERR_ERP_COMMAND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeInvalidState: http.StatusUnprocessableEntity,

	// External system errors
	ErrCodeERPUnavailable: http.StatusServiceUnavailable,
	ErrCodeERPCommand:     http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// kindErrorCode maps a domain error kind to the API error code family.
var kindErrorCode = map[shared.ErrorKind]string{
	shared.KindValidation:      ErrCodeValidation,
	shared.KindNotFound:        ErrCodeNotFound,
	shared.KindConnection:      ErrCodeERPUnavailable,
	shared.KindExternalCommand: ErrCodeERPCommand,
}

// ClassifyDomainError returns the API error code and HTTP status for a
// domain error, falling back to an internal error for anything unknown
func ClassifyDomainError(err error) (code string, status int) {
	for kind, c := range kindErrorCode {
		if shared.IsKind(err, kind) {
			return c, GetHTTPStatus(c)
		}
	}
	return ErrCodeInternal, http.StatusInternalServerError
}
