package ddl

import "github.com/jpedro002/middleware/internal/schema"

// ColumnDef is a column ready to render: Name is already quoted for the
// target dialect and SQLType is a dialect type.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef is a table ready to render. FQN is already quoted.
type TableDef struct {
	FQN         string
	Columns     []ColumnDef
	IfNotExists bool
}

// FromSchema converts a logical table using a dialect's quoting and type
// mapping. quoteFQN receives the possibly schema-qualified table name.
func FromSchema(
	t schema.Table,
	quoteFQN func(string) string,
	quoteIdent func(string) string,
	mapType func(schema.Type) string,
) TableDef {
	keys := make(map[string]bool, len(t.Key))
	for _, k := range t.Key {
		keys[k] = true
	}

	cols := make([]ColumnDef, 0, len(t.Columns))
	for _, c := range t.Columns {
		cols = append(cols, ColumnDef{
			Name:       quoteIdent(c.Name),
			SQLType:    mapType(c.Type),
			Nullable:   c.Nullable && !keys[c.Name],
			PrimaryKey: keys[c.Name],
		})
	}
	return TableDef{FQN: quoteFQN(t.Name), Columns: cols}
}
