package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
)

const uniqueViolation = "23505"

// mapErr translates driver errors into the repository error vocabulary.
func mapErr(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.ErrDuplicateEmail
	}
	return err
}

// validID reports whether id can be a primary key; anything else can never
// match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
