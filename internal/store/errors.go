package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeUnavailable indicates the handle is not open (closed, destroyed,
	// or never successfully opened). Callers must reopen; nothing retries.
	ErrCodeUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// ErrCodeBlockingOpenConflict indicates a destructive delete was refused
	// because another handle to the same database stayed open.
	ErrCodeBlockingOpenConflict ErrorCode = "BLOCKING_OPEN_CONFLICT"
)

// Error is a store failure with a machine readable code.
type Error struct {
	Code    ErrorCode
	Op      string // operation that failed, e.g. "get all"
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func unavailable(op string, state State) *Error {
	return &Error{
		Code:    ErrCodeUnavailable,
		Op:      op,
		Message: fmt.Sprintf("store is %s", state),
	}
}

// IsUnavailable returns true if err (or anything it wraps) is a
// STORE_UNAVAILABLE error.
func IsUnavailable(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeUnavailable
	}
	return false
}

// IsBlockingOpenConflict returns true if err (or anything it wraps) is a
// BLOCKING_OPEN_CONFLICT error.
func IsBlockingOpenConflict(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeBlockingOpenConflict
	}
	return false
}
