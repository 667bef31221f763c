// Package ddl provides MSSQL-specific helpers for generating CREATE
// statements. T-SQL has no CREATE ... IF NOT EXISTS, so statements are
// wrapped in SCHEMA_ID / OBJECT_ID guards.
package ddl

import (
	"fmt"
	"strings"

	gddl "github.com/jpedro002/middleware/internal/ddl"
	"github.com/jpedro002/middleware/internal/schema"
)

// BuildCreateTableSQL returns a T-SQL script of the form:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    ...
//	  );
//	END;
func BuildCreateTableSQL(t schema.Table) (string, error) {
	def := gddl.FromSchema(t, QuoteFQN, QuoteIdent, MapType)
	create, err := gddl.BuildCreateTableSQL(def)
	if err != nil {
		return "", err
	}
	create = strings.ReplaceAll(create, "\n", "\n  ")
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  %s;\nEND;",
		escapeLiteral(def.FQN),
		create,
	), nil
}

// BuildCreateSchemaSQL returns a guarded CREATE SCHEMA for the schema part of
// t's name, or "" when the name is unqualified. CREATE SCHEMA must be the
// only statement in its batch, hence EXEC.
func BuildCreateSchemaSQL(t schema.Table) string {
	s, _ := schema.SplitName(t.Name)
	if s == "" {
		return ""
	}
	return fmt.Sprintf(
		"IF SCHEMA_ID(N'%s') IS NULL EXEC(N'CREATE SCHEMA %s')",
		escapeLiteral(s),
		escapeLiteral(QuoteIdent(s)),
	)
}

// CreateStatements returns the statements that bootstrap t.
func CreateStatements(t schema.Table) ([]string, error) {
	table, err := BuildCreateTableSQL(t)
	if err != nil {
		return nil, err
	}
	if s := BuildCreateSchemaSQL(t); s != "" {
		return []string{s, table}, nil
	}
	return []string{table}, nil
}

// QuoteIdent quotes a single identifier segment using bracket syntax,
// escaping closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// QuoteFQN quotes a possibly schema-qualified table name, e.g.:
//
//	"fiscalizacao.grupos_ocorrencia" -> [fiscalizacao].[grupos_ocorrencia]
func QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, QuoteIdent(p))
	}
	return strings.Join(out, ".")
}

func escapeLiteral(s string) string { return strings.ReplaceAll(s, "'", "''") }
