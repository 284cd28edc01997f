package utils

import (
	"errors"
	"fmt"
)

// Error kinds shared by services and handlers. Services wrap them in an
// AppError so the message stays human readable while errors.Is still works.
var (
	ErrNotFound            = errors.New("NOT_FOUND")
	ErrConstraintViolation = errors.New("CONSTRAINT_VIOLATION")
	ErrConflict            = errors.New("CONFLICT")
)

// AppError carries a user-visible message together with its error kind.
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Kind }

// NotFound reports that a referenced entity does not exist.
func NotFound(format string, args ...interface{}) error {
	return &AppError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Constraint reports a rejected operation, e.g. deleting an entity that
// still has dependents or discontinuing a test without a reason.
func Constraint(format string, args ...interface{}) error {
	return &AppError{Kind: ErrConstraintViolation, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a status change that lost a race with another writer.
func Conflict(format string, args ...interface{}) error {
	return &AppError{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode returns the API error code for err.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConstraintViolation):
		return "CONSTRAINT_VIOLATION"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}

// StatusCode returns the HTTP status for err.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrConstraintViolation):
		return 422
	case errors.Is(err, ErrConflict):
		return 409
	default:
		return 500
	}
}
