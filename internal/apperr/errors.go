// Package apperr holds the error taxonomy shared by services and transport.
package apperr

import (
	"errors"

	"github.com/baharkarakas/storefront-backend/internal/validate"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("please authenticate using a valid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenMalformed     = errors.New("token malformed")
	ErrTokenUnverifiable  = errors.New("token unverifiable")
	ErrForbidden          = errors.New("access denied, admin privileges required")
	ErrNotFound           = errors.New("not found")
	// ErrConflict is returned by stores when a versioned write lost the race.
	ErrConflict = errors.New("version conflict")
)

// ValidationError carries field-level details and matches ErrValidation.
type ValidationError struct {
	Fields validate.Errs
}

func (e *ValidationError) Error() string { return e.Fields.Error() }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid wraps field errors; nil or empty input yields nil.
func Invalid(fields validate.Errs) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// InvalidField is shorthand for a single failing field.
func InvalidField(field, msg string) error {
	return &ValidationError{Fields: validate.Errs{{Field: field, Msg: msg}}}
}

// NotFound annotates ErrNotFound with the entity name.
func NotFound(entity string) error {
	return &notFoundError{entity: entity}
}

type notFoundError struct{ entity string }

func (e *notFoundError) Error() string        { return e.entity + " not found" }
func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

// IsAuth reports whether err should be answered with a generic re-authenticate response.
func IsAuth(err error) bool {
	return errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenUnverifiable)
}
