package ddl

import (
	"strings"

	gddl "github.com/jpedro002/middleware/internal/ddl"
	"github.com/jpedro002/middleware/internal/schema"
)

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for t with
// double-quoted identifiers. Key columns are always NOT NULL.
func BuildCreateTableSQL(t schema.Table) (string, error) {
	def := gddl.FromSchema(t, QuoteFQN, QuoteIdent, MapType)
	def.IfNotExists = true
	return gddl.BuildCreateTableSQL(def)
}

// BuildCreateSchemaSQL renders CREATE SCHEMA IF NOT EXISTS for the schema
// part of t's name. It returns "" for unqualified names.
func BuildCreateSchemaSQL(t schema.Table) string {
	s, _ := schema.SplitName(t.Name)
	if s == "" {
		return ""
	}
	return "CREATE SCHEMA IF NOT EXISTS " + QuoteIdent(s)
}

// QuoteIdent quotes a single identifier segment for Postgres, e.g.:
//
//	QuoteIdent(`nome`)       => `"nome"`
//	QuoteIdent(`weird"name`) => `"weird""name"`
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes a possibly schema-qualified name like
// "fiscalizacao.grupos_ocorrencia" to `"fiscalizacao"."grupos_ocorrencia"`.
// Empty segments are ignored.
func QuoteFQN(f string) string {
	parts := strings.Split(f, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, QuoteIdent(p))
	}
	return strings.Join(out, ".")
}
