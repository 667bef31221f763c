package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jpedro002/middleware/internal/storage"
)

// classify maps pgx errors to storage error kinds using the SQLSTATE class.
func classify(err error) storage.ErrorKind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "57014": // query_canceled
			return storage.KindCanceled
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return storage.KindConnection
		case strings.HasPrefix(pgErr.Code, "23"):
			return storage.KindConstraint
		case strings.HasPrefix(pgErr.Code, "22"):
			return storage.KindData
		case strings.HasPrefix(pgErr.Code, "42"):
			return storage.KindSchema
		}
		return storage.KindOther
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return storage.KindConnection
	}
	if pgconn.Timeout(err) {
		return storage.KindConnection
	}
	return storage.KindOther
}
