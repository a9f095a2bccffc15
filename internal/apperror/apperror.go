// Package apperror defines the error taxonomy shared by services and the
// HTTP layer. Handlers translate the sentinels into fixed status codes and
// only ever surface the caller-safe message.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates malformed or missing caller input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a write would violate a uniqueness constraint.
	ErrConflict = errors.New("conflict")
	// ErrNotFound indicates no matching entity exists.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates bad credentials or a bad, expired, stale,
	// or missing token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMissingAsset indicates a required upload was not supplied.
	ErrMissingAsset = errors.New("missing asset")
)

// Error pairs a taxonomy sentinel with a message safe to return to callers.
type Error struct {
	Err     error
	Message string
	Field   string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports invalid input on the named field.
func Validation(field, message string) *Error {
	return &Error{Err: ErrValidation, Message: message, Field: field}
}

// Conflict reports a duplicate unique field.
func Conflict(message string) *Error {
	return &Error{Err: ErrConflict, Message: message}
}

// NotFound reports a missing entity.
func NotFound(resource string) *Error {
	return &Error{Err: ErrNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// Unauthorized reports rejected credentials or tokens.
func Unauthorized(message string) *Error {
	return &Error{Err: ErrUnauthorized, Message: message}
}

// MissingAsset reports a required upload that was not provided.
func MissingAsset(name string) *Error {
	return &Error{Err: ErrMissingAsset, Message: fmt.Sprintf("%s is required", name)}
}
