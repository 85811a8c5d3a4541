package shared

import "errors"

// ErrorKind classifies a domain error so callers can map it to the right
// response without parsing messages.
type ErrorKind string

const (
	// KindValidation marks malformed or semantically invalid input caught
	// before any external call.
	KindValidation ErrorKind = "VALIDATION"
	// KindNotFound marks a referenced document or master-data record that
	// does not exist.
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindConnection marks a failure to establish or use the external session.
	KindConnection ErrorKind = "CONNECTION"
	// KindExternalCommand marks a command the external system rejected or
	// failed mid-operation.
	KindExternalCommand ErrorKind = "EXTERNAL_COMMAND"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error of the given kind
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(code, message string) *DomainError {
	return NewDomainError(KindNotFound, code, message)
}

// NewConnectionError creates a connection error
func NewConnectionError(code, message string) *DomainError {
	return NewDomainError(KindConnection, code, message)
}

// NewExternalCommandError creates an external-command error
func NewExternalCommandError(code, message string) *DomainError {
	return NewDomainError(KindExternalCommand, code, message)
}

// IsKind reports whether err is a DomainError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}

// Common domain errors
var (
	ErrNotFound     = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrInvalidInput = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState = NewValidationError("INVALID_STATE", "Operation not allowed in current state")
)
