package models

import (
	"errors"
	"strings"
)

// Error taxonomy. Wrap with fmt.Errorf("%w: ...") to add detail.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrAuthorization  = errors.New("authorization error")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInvalidPayment = errors.New("invalid payment")
)

// ErrInvalidCredentials is returned for both unknown users and wrong passwords.
var ErrInvalidCredentials = &messageError{kind: ErrAuthentication, msg: "invalid credentials"}

// ErrConcurrentUpdate is returned when a transaction lost a race against
// another writer. The request can be retried as is.
var ErrConcurrentUpdate = &messageError{kind: ErrConflict, msg: "concurrent update, retry the request"}

// ValidationError reports malformed or missing input
type ValidationError struct {
	Message string
	Fields  []string
}

// NewValidationError creates a ValidationError for the given fields
func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// MissingFields creates a ValidationError listing absent required fields
func MissingFields(fields ...string) *ValidationError {
	return &ValidationError{
		Message: "missing or invalid fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type messageError struct {
	kind error
	msg  string
}

func (e *messageError) Error() string { return e.msg }

func (e *messageError) Unwrap() error { return e.kind }
