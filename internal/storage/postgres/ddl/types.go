// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import "github.com/jpedro002/middleware/internal/schema"

// MapType maps a logical column type to a Postgres SQL type.
//
//	int64     -> BIGINT
//	bool      -> BOOLEAN
//	timestamp -> TIMESTAMP
//	text, anything else -> TEXT
func MapType(t schema.Type) string {
	switch t {
	case schema.TypeInt64:
		return "BIGINT"
	case schema.TypeBool:
		return "BOOLEAN"
	case schema.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
