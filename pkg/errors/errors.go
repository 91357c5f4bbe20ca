// Package errors provides structured error types for the poster generator.
//
// Every failure that reaches the user carries a machine-readable [Code] so the
// CLI can decide whether a problem is fatal for the whole invocation or only
// for a single render:
//
//   - INVALID_*: input validation failures, reported before any fetch starts
//   - ACQUISITION_FAILED / GEOCODE_FAILED: network data could not be obtained
//   - DEGENERATE_GEOMETRY: the fetched data cannot produce a poster
//   - CACHE_ERROR: persistence problems (never fatal)
//   - RENDER_FAILED: a single theme/format render failed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidRatio, "invalid aspect ratio %q", s)
//	if errors.Is(err, errors.ErrCodeInvalidRatio) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeAcquisition, origErr, "fetch street network")
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
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidRatio       Code = "INVALID_RATIO"
	ErrCodeInvalidShift       Code = "INVALID_SHIFT"
	ErrCodeInvalidTheme       Code = "INVALID_THEME"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidCoordinates Code = "INVALID_COORDINATES"
	ErrCodeInvalidConfig      Code = "INVALID_CONFIG"

	// Acquisition errors
	ErrCodeAcquisition Code = "ACQUISITION_FAILED"
	ErrCodeGeocode     Code = "GEOCODE_FAILED"
	ErrCodeNotFound    Code = "NOT_FOUND"

	// Geometry errors
	ErrCodeDegenerate Code = "DEGENERATE_GEOMETRY"

	// Non-fatal persistence errors
	ErrCodeCache Code = "CACHE_ERROR"

	// Render errors
	ErrCodeRender Code = "RENDER_FAILED"

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

// IsInput reports whether err is an input validation failure.
func IsInput(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidRatio, ErrCodeInvalidShift,
		ErrCodeInvalidTheme, ErrCodeInvalidFormat, ErrCodeInvalidCoordinates,
		ErrCodeInvalidConfig:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// Join combines multiple errors into one, dropping nils.
// It returns nil when no non-nil error is given.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
