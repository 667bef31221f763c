// Package ddl contains SQLite-specific helpers for generating DDL.
package ddl

import "github.com/jpedro002/middleware/internal/schema"

// MapType maps a logical column type to a SQLite affinity.
//
// SQLite is dynamically typed: booleans are stored as 0/1 and timestamps as
// the driver's text form.
func MapType(t schema.Type) string {
	switch t {
	case schema.TypeInt64, schema.TypeBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}
