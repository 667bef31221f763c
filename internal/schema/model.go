// Package schema describes destination tables independently of any SQL
// dialect. Storage backends render these descriptions into DDL and INSERT
// statements.
package schema

import (
	"fmt"
	"strings"
)

// Type is a logical column type.
type Type string

const (
	TypeInt64     Type = "int64"
	TypeText      Type = "text"
	TypeBool      Type = "bool"
	TypeTimestamp Type = "timestamp"
)

// Column is one destination column.
type Column struct {
	Name     string
	Type     Type
	Nullable bool
}

// Table is a destination table. Name may be schema-qualified
// ("fiscalizacao.grupos_ocorrencia"). Key lists the primary key columns,
// which are also the conflict target of inserts.
type Table struct {
	Name    string
	Columns []Column
	Key     []string
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Renamed returns a copy of t with a different table name.
func (t Table) Renamed(name string) Table {
	t.Name = name
	return t
}

// Validate checks that the table has a name, columns, and that every key
// column exists.
func (t Table) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("schema: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("schema: table %s has no columns", t.Name)
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("schema: table %s has a column with an empty name", t.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("schema: table %s repeats column %s", t.Name, c.Name)
		}
		seen[c.Name] = true
	}
	for _, k := range t.Key {
		if !seen[k] {
			return fmt.Errorf("schema: key column %s is not a column of %s", k, t.Name)
		}
	}
	return nil
}

// SplitName splits "schema.table" into its parts. A name without a dot has
// an empty schema.
func SplitName(name string) (schemaName, table string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
