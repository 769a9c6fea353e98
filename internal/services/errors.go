package services

import (
	"errors"
	"fmt"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
)

// wrapCommit adds context to infrastructure failures and passes domain
// errors through untouched.
func wrapCommit(what string, err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrValidation):
		return err
	}
	return fmt.Errorf("%s: %w", what, err)
}
