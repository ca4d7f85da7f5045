// Package apperrors defines the error kinds surfaced by WorkNest services.
//
// Services return *Error values built with NotFound, Forbidden or Validation.
// Callers classify them with errors.Is against the sentinel kinds, which keeps
// working when repositories or services wrap the error with fmt.Errorf("%w").
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error carries a machine-readable kind and a message safe to show the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the kind so errors.Is(err, ErrForbidden) matches.
func (e *Error) Unwrap() error {
	return e.Kind
}

// NotFound reports a missing project, task, invitation, notification or user.
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports that the caller's role is insufficient for the operation.
func Forbidden(format string, args ...any) error {
	return &Error{Kind: ErrForbidden, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed input or a rejected state transition.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Message returns the caller-facing message for err, or fallback when err
// is not an *Error.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}

// Conflict reports a write that collided with an existing row.
func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a request without a usable caller identity.
func Unauthorized(format string, args ...any) error {
	return &Error{Kind: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}
