// Package ddl contains MSSQL-specific helpers for generating DDL.
package ddl

import "github.com/jpedro002/middleware/internal/schema"

// MapType maps a logical column type to a SQL Server column type. Text maps
// to NVARCHAR(MAX).
func MapType(t schema.Type) string {
	switch t {
	case schema.TypeInt64:
		return "BIGINT"
	case schema.TypeBool:
		return "BIT"
	case schema.TypeTimestamp:
		return "DATETIME2(6)"
	default:
		return "NVARCHAR(MAX)"
	}
}
