// Package mssql implements a Microsoft SQL Server storage.Repository on
// go-mssqldb. SQL Server has no ON CONFLICT, so each page is de-duplicated
// by key and inserted with INSERT ... SELECT ... WHERE NOT EXISTS.
package mssql

import (
	"errors"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"github.com/jpedro002/middleware/internal/storage"
	mssqlddl "github.com/jpedro002/middleware/internal/storage/mssql/ddl"
	"github.com/jpedro002/middleware/internal/storage/sqldb"
)

// maxParams stays below SQL Server's 2100 parameters per request.
const maxParams = 2000

// Dialect is the SQL Server sqldb.Dialect.
var Dialect = sqldb.Dialect{
	Name:        "mssql",
	DriverName:  "sqlserver",
	QuoteIdent:  mssqlddl.QuoteIdent,
	TableName:   mssqlddl.QuoteFQN,
	BuildInsert: buildInsertSQL,
	PreparePage: sqldb.DedupeByKey,
	MaxParams:   maxParams,
	Classify:    classify,
	CreateTable: mssqlddl.CreateStatements,
}

// validateDSN fails fast on malformed connection strings.
func validateDSN(dsn string) error {
	if _, err := msdsn.Parse(dsn); err != nil {
		return fmt.Errorf("mssql dsn: %w", err)
	}
	return nil
}

// buildInsertSQL renders
//
//	INSERT INTO [s].[t] ([id], [a])
//	SELECT src.[id], src.[a] FROM (VALUES (?, ?), (?, ?)) AS src ([id], [a])
//	WHERE NOT EXISTS (SELECT 1 FROM [s].[t] AS dst WHERE dst.[id] = src.[id])
func buildInsertSQL(table string, columns, keys []string, n int) string {
	srcCols := make([]string, len(columns))
	for i, c := range columns {
		srcCols[i] = "src." + c
	}
	match := make([]string, len(keys))
	for i, k := range keys {
		match[i] = fmt.Sprintf("dst.%s = src.%s", k, k)
	}
	cols := strings.Join(columns, ", ")
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM (VALUES %s) AS src (%s) WHERE NOT EXISTS (SELECT 1 FROM %s AS dst WHERE %s)",
		table,
		cols,
		strings.Join(srcCols, ", "),
		sqldb.ValuesList(len(columns), n),
		cols,
		table,
		strings.Join(match, " AND "),
	)
}

// classify maps SQL Server error numbers to storage error kinds.
func classify(err error) storage.ErrorKind {
	num, ok := errorNumber(err)
	if !ok {
		return storage.KindOther
	}
	switch num {
	case 2627, 2601, 515, 547:
		return storage.KindConstraint
	case 241, 242, 245, 8114, 8115, 8152, 2628:
		return storage.KindData
	case 207, 208, 2714:
		return storage.KindSchema
	case 18456, 4060, 233, 10054:
		return storage.KindConnection
	case 3980, 3617:
		return storage.KindCanceled
	default:
		return storage.KindOther
	}
}

func errorNumber(err error) (int32, bool) {
	var v mssql.Error
	if errors.As(err, &v) {
		return v.Number, true
	}
	var p *mssql.Error
	if errors.As(err, &p) && p != nil {
		return p.Number, true
	}
	return 0, false
}
