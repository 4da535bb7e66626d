// Package errors provides structured error types for edgepunks.
//
// This package defines error codes and types that enable:
//   - Distinct handling of the rasterizer's terminal failure kinds
//   - Machine-readable error codes for the CLI exit path and the HTTP server
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The rasterizer core surfaces three codes that callers are expected to
// branch on:
//   - MALFORMED_DOCUMENT: the SVG does not follow the generator's layer encoding
//   - PRECONDITION_VIOLATION: classification was invoked with too few layers
//   - UNSUPPORTED_TRANSPARENT_UNIQUE: a transparent 1-of-1 was requested without
//     an override asset
//
// The remaining codes follow the INVALID_*, NOT_FOUND, NETWORK_* and
// INTERNAL_* conventions.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedDocument, "no background-image declaration")
//	if errors.Is(err, errors.ErrCodeMalformedDocument) {
//	    // Skip the token, the source document is unusable
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "tokenURI(%d)", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Rasterizer core errors
	ErrCodeMalformedDocument            Code = "MALFORMED_DOCUMENT"
	ErrCodePreconditionViolation        Code = "PRECONDITION_VIOLATION"
	ErrCodeUnsupportedTransparentUnique Code = "UNSUPPORTED_TRANSPARENT_UNIQUE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// The outermost *Error wins, so Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, ...))
// reports ErrCodeNetwork only.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
