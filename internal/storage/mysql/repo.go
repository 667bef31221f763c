// Package mysql implements a MySQL-backed storage.Repository on
// go-sql-driver/mysql. Pages are multi-row INSERTs with a no-op
// ON DUPLICATE KEY UPDATE, so existing keys report zero affected rows.
package mysql

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/jpedro002/middleware/internal/storage"
	mysqlddl "github.com/jpedro002/middleware/internal/storage/mysql/ddl"
	"github.com/jpedro002/middleware/internal/storage/sqldb"
)

// maxParams is the server's prepared statement placeholder limit.
const maxParams = 65535

// Dialect is the MySQL sqldb.Dialect.
var Dialect = sqldb.Dialect{
	Name:        "mysql",
	DriverName:  "mysql",
	QuoteIdent:  mysqlddl.QuoteIdent,
	TableName:   mysqlddl.QuoteFQN,
	BuildInsert: buildInsertSQL,
	MaxParams:   maxParams,
	Classify:    classify,
	CreateTable: mysqlddl.CreateStatements,
}

// normalizeDSN parses dsn and forces the options the loader relies on:
// parseTime, UTC timestamps and the dial timeout.
func normalizeDSN(dsn string, timeout time.Duration) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return cfg.FormatDSN(), nil
}

// buildInsertSQL renders
//
//	INSERT INTO `t` (`id`, `a`) VALUES (?, ?), (?, ?) ON DUPLICATE KEY UPDATE `id` = `id`
func buildInsertSQL(table string, columns, keys []string, n int) string {
	noop := make([]string, len(keys))
	for i, k := range keys {
		noop[i] = fmt.Sprintf("%s = %s", k, k)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s ON DUPLICATE KEY UPDATE %s",
		table,
		strings.Join(columns, ", "),
		sqldb.ValuesList(len(columns), n),
		strings.Join(noop, ", "),
	)
}

// classify maps MySQL server error numbers to storage error kinds.
func classify(err error) storage.ErrorKind {
	if errors.Is(err, mysql.ErrInvalidConn) {
		return storage.KindConnection
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return storage.KindOther
	}
	switch me.Number {
	case 1062, 1451, 1452, 1048, 1364, 3819:
		return storage.KindConstraint
	case 1264, 1292, 1366, 1406, 1265:
		return storage.KindData
	case 1146, 1054, 1049:
		return storage.KindSchema
	case 1040, 1045, 1053, 2006, 2013:
		return storage.KindConnection
	case 1317, 3024:
		return storage.KindCanceled
	default:
		return storage.KindOther
	}
}
