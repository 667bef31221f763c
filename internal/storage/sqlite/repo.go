// Package sqlite implements a SQLite-backed storage.Repository on
// modernc.org/sqlite. Pages are sent as multi-row INSERTs with
// ON CONFLICT DO NOTHING inside one transaction. It serves local dry runs
// and tests.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jpedro002/middleware/internal/storage"
	"github.com/jpedro002/middleware/internal/storage/sqldb"
	sqliteddl "github.com/jpedro002/middleware/internal/storage/sqlite/ddl"
)

// maxParams is SQLITE_MAX_VARIABLE_NUMBER for SQLite >= 3.32.
const maxParams = 32766

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Dialect is the SQLite sqldb.Dialect.
var Dialect = sqldb.Dialect{
	Name:        "sqlite",
	DriverName:  "sqlite",
	QuoteIdent:  sqliteddl.QuoteIdent,
	TableName:   sqliteddl.TableName,
	BuildInsert: buildInsertSQL,
	MaxParams:   maxParams,
	Classify:    classify,
	CreateTable: sqliteddl.CreateStatements,
	AfterOpen: func(ctx context.Context, db *sqlx.DB) error {
		_, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON")
		return err
	},
}

// buildInsertSQL renders
//
//	INSERT INTO "t" ("a", "b") VALUES (?, ?), (?, ?) ON CONFLICT ("id") DO NOTHING
func buildInsertSQL(table string, columns, keys []string, n int) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s ON CONFLICT (%s) DO NOTHING",
		table,
		strings.Join(columns, ", "),
		sqldb.ValuesList(len(columns), n),
		strings.Join(keys, ", "),
	)
}

// classify uses the primary result code of *sqlite.Error.
func classify(err error) storage.ErrorKind {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return storage.KindOther
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return storage.KindConstraint
	case sqlite3.SQLITE_MISMATCH, sqlite3.SQLITE_TOOBIG, sqlite3.SQLITE_RANGE:
		return storage.KindData
	case sqlite3.SQLITE_ERROR, sqlite3.SQLITE_SCHEMA:
		return storage.KindSchema
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
		return storage.KindConnection
	case sqlite3.SQLITE_INTERRUPT:
		return storage.KindCanceled
	default:
		return storage.KindOther
	}
}
