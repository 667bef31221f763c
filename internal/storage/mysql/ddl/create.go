package ddl

import (
	"strings"

	gddl "github.com/jpedro002/middleware/internal/ddl"
	"github.com/jpedro002/middleware/internal/schema"
)

// QuoteIdent back-quotes an identifier, escaping embedded back-quotes.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// QuoteFQN quotes "db.table" as `db`.`table`. In MySQL the qualifier names
// a database.
func QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, QuoteIdent(p))
	}
	return strings.Join(out, ".")
}

// CreateStatements returns CREATE DATABASE IF NOT EXISTS for a qualified
// name followed by CREATE TABLE IF NOT EXISTS.
func CreateStatements(t schema.Table) ([]string, error) {
	def := gddl.FromSchema(t, QuoteFQN, QuoteIdent, MapType)
	def.IfNotExists = true
	table, err := gddl.BuildCreateTableSQL(def)
	if err != nil {
		return nil, err
	}
	if s, _ := schema.SplitName(t.Name); s != "" {
		return []string{"CREATE DATABASE IF NOT EXISTS " + QuoteIdent(s), table}, nil
	}
	return []string{table}, nil
}
