// Package errors provides structured error types for the jigsaw generator.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, API and library callers
//   - Machine-readable error codes for programmatic handling
//   - Attribution of failures to a specific board cell (row, col)
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The generation pipeline raises three domain codes:
//   - INVALID_GEOMETRY: board dimensions or counts that cannot be resolved
//     (fatal, raised before any edge or piece work)
//   - DEGENERATE_EDGE: tab depth incompatible with the piece size, which
//     would make a boundary self-intersect (fatal unless the pipeline runs
//     with the warn policy)
//   - OFFSET_FAILURE: the curve offset primitive failed or timed out for one
//     piece (recoverable, reported as a warning)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidGeometry, "width must be positive, got %g", w)
//	if errors.Is(err, errors.ErrCodeInvalidGeometry) {
//	    // Handle validation error
//	}
//
//	// Attribute a failure to a cell
//	err := errors.AtCell(errors.New(errors.ErrCodeDegenerateEdge, "tab too deep"), row, col)
//	if r, c, ok := errors.CellOf(err); ok {
//	    fmt.Printf("piece (%d,%d): %s\n", r, c, errors.UserMessage(err))
//	}
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidGeometry Code = "INVALID_GEOMETRY"
	ErrCodeInvalidMode     Code = "INVALID_MODE"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Generation errors
	ErrCodeDegenerateEdge Code = "DEGENERATE_EDGE"
	ErrCodeOffsetFailure  Code = "OFFSET_FAILURE"
	ErrCodeCanceled       Code = "CANCELED"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
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

	// Row and Col locate the failing piece when HasCell is set.
	Row, Col int
	HasCell  bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.HasCell {
		prefix = fmt.Sprintf("%s (piece %d,%d)", e.Code, e.Row, e.Col)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
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

// AtCell attaches a board cell to err. A plain error is wrapped as
// INTERNAL_ERROR first; nil stays nil.
func AtCell(err error, row, col int) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return &Error{Code: ErrCodeInternal, Message: err.Error(), Cause: err, Row: row, Col: col, HasCell: true}
	}
	cp := *e
	cp.Row, cp.Col, cp.HasCell = row, col, true
	return &cp
}

// CellOf returns the cell attached to the first *Error in the chain that
// carries one.
func CellOf(err error) (row, col int, ok bool) {
	for err != nil {
		if e, isErr := err.(*Error); isErr && e.HasCell {
			return e.Row, e.Col, true
		}
		err = errors.Unwrap(err)
	}
	return 0, 0, false
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
