// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import "github.com/jpedro002/middleware/internal/schema"

// MapType maps a logical column type to a MySQL column type. Timestamps use
// DATETIME(6) to keep microseconds.
func MapType(t schema.Type) string {
	switch t {
	case schema.TypeInt64:
		return "BIGINT"
	case schema.TypeBool:
		return "BOOLEAN"
	case schema.TypeTimestamp:
		return "DATETIME(6)"
	default:
		return "TEXT"
	}
}
