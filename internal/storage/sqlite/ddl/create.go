package ddl

import (
	"strings"

	gddl "github.com/jpedro002/middleware/internal/ddl"
	"github.com/jpedro002/middleware/internal/schema"
)

// TableName returns the quoted name SQLite uses for a configured table.
// SQLite has no schemas; a qualifier is dropped unless it names an attached
// database that always exists ("main" or "temp").
func TableName(name string) string {
	s, t := schema.SplitName(name)
	switch strings.ToLower(s) {
	case "main", "temp":
		return QuoteIdent(s) + "." + QuoteIdent(t)
	default:
		return QuoteIdent(t)
	}
}

// QuoteIdent double-quotes an identifier, escaping embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for t.
func BuildCreateTableSQL(t schema.Table) (string, error) {
	def := gddl.FromSchema(t, TableName, QuoteIdent, MapType)
	def.IfNotExists = true
	return gddl.BuildCreateTableSQL(def)
}

// CreateStatements returns the statements that bootstrap t.
func CreateStatements(t schema.Table) ([]string, error) {
	s, err := BuildCreateTableSQL(t)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}
