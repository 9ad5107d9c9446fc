package core

import "errors"

// ErrNotFound is returned when a requested entity does not resolve.
// The literal message is part of the API contract.
var ErrNotFound = errors.New("Not found")

// ValidationError indicates malformed client input: an unknown filter key,
// a bad operation, a wrong value shape, or unparsable query JSON.
// The message is surfaced to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// UserInputError indicates a well-formed request that violates a semantic
// precondition, such as a duplicate reporting year or withdrawing a report
// that is not published. The message is surfaced to the caller verbatim.
type UserInputError struct {
	Message string
}

func (e *UserInputError) Error() string {
	return e.Message
}

// NewUserInputError creates a UserInputError with the given message
func NewUserInputError(message string) *UserInputError {
	return &UserInputError{Message: message}
}

// IsClientFault reports whether err should surface as a client error
// rather than an infrastructure failure
func IsClientFault(err error) bool {
	var ve *ValidationError
	var ue *UserInputError
	return errors.As(err, &ve) || errors.As(err, &ue) || errors.Is(err, ErrNotFound)
}
