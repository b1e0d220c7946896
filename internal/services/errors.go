package services

import (
	"errors"
	"fmt"

	"dojohub/internal/repositories"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrProvider          = errors.New("payment provider error")
	ErrRateLimited       = errors.New("too many attempts")
)

// FieldError is a validation failure tied to one request field. It matches
// ErrValidation with errors.Is.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}

func invalidField(field, format string, args ...interface{}) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// notFound maps pgx.ErrNoRows to ErrNotFound for entity and passes every
// other error through.
func notFound(entity string, err error) error {
	if repositories.IsNotFound(err) {
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	}
	return err
}

func conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func forbidden(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}
