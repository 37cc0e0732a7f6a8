package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotEligible     = errors.New("not eligible")
	ErrDataIntegrity   = errors.New("data integrity fault")
	ErrUnavailable     = errors.New("backend unavailable")
)

type AppError struct {
	Err     error  // sentinel category
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthenticated returns an AppError indicating no valid session exists.
// HTTP handlers map this to 401 Unauthorized.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// NotEligible returns an AppError for a donor whose tenure is below the
// annual-certificate threshold. This is an expected condition rather than a
// fault — the UI renders it as a disabled action — but the issuer rejects
// writes with it as a second line of defence.
func NotEligible(message string) *AppError {
	return &AppError{
		Err:     ErrNotEligible,
		Message: message,
	}
}

// DataIntegrity reports a broken invariant in the store, e.g. a unique-key
// lookup returning more than one row. Surfaced to the user as a generic
// failure; the details go to the log.
func DataIntegrity(message string) *AppError {
	return &AppError{
		Err:     ErrDataIntegrity,
		Message: message,
	}
}

// Unavailable wraps a transport-level store failure.
func Unavailable(op string, err error) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: fmt.Sprintf("%s: backend unavailable: %v", op, err),
	}
}
