package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func uniqueViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr, true
	}
	return nil, false
}

// ViolatedConstraint returns the constraint name of a unique violation, or "".
func ViolatedConstraint(err error) string {
	if pgErr, ok := uniqueViolation(err); ok {
		return pgErr.ConstraintName
	}
	return ""
}
