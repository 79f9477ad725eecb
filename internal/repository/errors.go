package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("record already exists")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrDuplicate
		case foreignKeyViolation:
			// The referenced row (user, event, ministry) does not exist.
			return ErrNotFound
		}
	}
	return err
}
