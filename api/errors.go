// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-thread.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrLockMisuse       = errors.New("lock misuse")
	ErrNoAction         = errors.New("thread has no action")
	ErrThreadLimit      = errors.New("thread budget exhausted")
	ErrThreadCancelled  = errors.New("thread cancelled")
	ErrThreadForced     = errors.New("thread forcibly cancelled")
	ErrOperationTimeout = errors.New("operation timeout")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeLockMisuse
	ErrCodeResourceExhausted
	ErrCodeTimeout
	ErrCodeInternal
)

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeLockMisuse:
		return "lock_misuse"
	case ErrCodeResourceExhausted:
		return "resource_exhausted"
	case ErrCodeTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap exposes the sentinel the error was built from.
func (e *Error) Unwrap() error {
	return e.Cause
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

// WithCause records the underlying sentinel so errors.Is keeps working.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}
