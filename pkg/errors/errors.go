// Package errors provides structured error types for the layout engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, HTTP API and library callers
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes follow the three failure categories of a generation request:
//   - INVALID_*: malformed constraints, unknown room types, dangling relationships
//   - UNSATISFIABLE_LAYOUT: a room cannot be placed at all
//   - EXTERNAL_DEPENDENCY: the interpreter or the layout store failed
//
// A failing compliance rule is never an error; it is a normal report outcome.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidRoomType, "unknown room type: %s", id)
//	if errors.Is(err, errors.ErrCodeInvalidRoomType) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeExternal, origErr, "interpret request")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput        Code = "INVALID_INPUT"
	ErrCodeInvalidRoomType     Code = "INVALID_ROOM_TYPE"
	ErrCodeInvalidRelationship Code = "INVALID_RELATIONSHIP"
	ErrCodeInvalidStyle        Code = "INVALID_STYLE"
	ErrCodeInvalidJurisdiction Code = "INVALID_JURISDICTION"
	ErrCodeInvalidLayout       Code = "INVALID_LAYOUT"

	// Layout could not be produced
	ErrCodeUnsatisfiable Code = "UNSATISFIABLE_LAYOUT"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeLayoutNotFound Code = "LAYOUT_NOT_FOUND"

	// External collaborators (interpreter, store)
	ErrCodeExternal Code = "EXTERNAL_DEPENDENCY"
	ErrCodeTimeout  Code = "TIMEOUT"

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

// IsInvalid reports whether err carries one of the INVALID_* codes.
func IsInvalid(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidRoomType, ErrCodeInvalidRelationship,
		ErrCodeInvalidStyle, ErrCodeInvalidJurisdiction, ErrCodeInvalidLayout:
		return true
	}
	return false
}

// HTTPStatus maps an error code to the HTTP status the API responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidRoomType, ErrCodeInvalidRelationship,
		ErrCodeInvalidStyle, ErrCodeInvalidJurisdiction, ErrCodeInvalidLayout:
		return 400
	case ErrCodeNotFound, ErrCodeLayoutNotFound:
		return 404
	case ErrCodeUnsatisfiable:
		return 422
	case ErrCodeExternal:
		return 502
	case ErrCodeTimeout:
		return 504
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
