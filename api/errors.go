// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for atomcell.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrShareabilityViolation = fmt.Errorf("value must be shareable when used across domains")
	ErrInvalidArgument       = fmt.Errorf("invalid argument")
	ErrNotSupported          = fmt.Errorf("operation not supported")
	ErrClosed                = fmt.Errorf("resource is closed")
	ErrEnqueueAfterShutdown  = fmt.Errorf("cannot queue work after shutdown")
	ErrAlreadyCountedDown    = fmt.Errorf("already counted down to zero")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeInvalidArgument ErrorCode = iota + 1
	ErrCodeShareabilityViolation
	ErrCodeNotSupported
	ErrCodeClosed
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap maps the code onto its sentinel so errors.Is works on structured errors.
func (e *Error) Unwrap() error {
	switch e.Code {
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	case ErrCodeShareabilityViolation:
		return ErrShareabilityViolation
	case ErrCodeNotSupported:
		return ErrNotSupported
	case ErrCodeClosed:
		return ErrClosed
	}
	return nil
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
