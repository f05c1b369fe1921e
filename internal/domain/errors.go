package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors so the transport layer can map them
// to status codes without inspecting message strings.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthorized
	KindInvalidState
	KindInternal
)

// Error is the shared error type for all domain-level failures.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

// Error returns the error message.
func (e *Error) Error() string { return e.Message }

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// NewValidationError creates an error for invalid input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewConflictError creates an error for concurrent-modification conflicts.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewForbiddenError creates an error for operations the caller may not perform.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewUnauthorizedError creates an error for missing or invalid credentials.
func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewInvalidStateError creates an error for a disallowed status transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("invalid state transition from %q to %q", from, to),
	}
}

// NewInvalidStateErrorWithReason creates an invalid-state error carrying the
// reason produced by the transition table.
func NewInvalidStateErrorWithReason(reason string) *Error {
	return &Error{Kind: KindInvalidState, Message: reason}
}

// WrapInternal wraps an unexpected error with a stable message.
func WrapInternal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// KindOf extracts the ErrorKind from an error chain, defaulting to KindInternal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
