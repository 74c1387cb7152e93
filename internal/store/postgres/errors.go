package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlStateForeignKeyViolation = "23503"
	sqlStateUndefinedFunction   = "42883"
)

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isForeignKeyViolation(err error) bool {
	return hasSQLState(err, sqlStateForeignKeyViolation)
}

// isUndefinedFunction reports a missing database function, which happens
// when the functions migration has not been applied yet.
func isUndefinedFunction(err error) bool {
	return hasSQLState(err, sqlStateUndefinedFunction)
}
