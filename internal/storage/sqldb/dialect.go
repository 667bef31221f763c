// Package sqldb implements storage.Repository on database/sql through sqlx.
// The sqlite, mysql and mssql backends differ only in their Dialect: the
// driver name, identifier quoting, the conflict-skip INSERT and error
// classification.
package sqldb

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jpedro002/middleware/internal/schema"
	"github.com/jpedro002/middleware/internal/storage"
)

// Dialect describes one database/sql backend.
type Dialect struct {
	// Name is used in error messages and logs.
	Name string

	// DriverName is the database/sql driver name passed to sqlx.Open.
	DriverName string

	// QuoteIdent quotes one identifier segment.
	QuoteIdent func(string) string

	// TableName maps the configured table name to the name used in SQL,
	// already quoted. Nil quotes each dot-separated segment.
	TableName func(string) string

	// BuildInsert renders a conflict-skip INSERT for n rows using "?"
	// placeholders; the query is rebound to the driver's bindvar style.
	// table and columns are already quoted.
	BuildInsert func(table string, columns, keys []string, n int) string

	// PreparePage rewrites a page before it is sent. keyIdx holds the
	// positions of the key columns in each row. Nil sends pages unchanged.
	PreparePage func(rows [][]any, keyIdx []int) [][]any

	// MaxParams is the driver's bind parameter limit. Pages needing more are
	// sent as several statements. Zero means unlimited.
	MaxParams int

	// Classify maps driver errors to storage error kinds.
	Classify storage.Classifier

	// CreateTable returns the statements that create t if it is missing.
	CreateTable func(t schema.Table) ([]string, error)

	// AfterOpen runs once on the new connection.
	AfterOpen func(ctx context.Context, db *sqlx.DB) error
}

func (d Dialect) table(name string) string {
	if d.TableName != nil {
		return d.TableName(name)
	}
	return QuoteFQN(name, d.QuoteIdent)
}

func (d Dialect) quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = d.QuoteIdent(n)
	}
	return out
}

// QuoteFQN quotes each non-empty dot-separated segment of name.
func QuoteFQN(name string, quote func(string) string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// ValuesList renders n groups of width "?" placeholders:
// "(?, ?), (?, ?)".
func ValuesList(width, n int) string {
	one := "(" + strings.TrimSuffix(strings.Repeat("?, ", width), ", ") + ")"
	groups := make([]string, n)
	for i := range groups {
		groups[i] = one
	}
	return strings.Join(groups, ", ")
}

// DedupeByKey keeps the first row for each key and drops later duplicates,
// preserving order.
func DedupeByKey(rows [][]any, keyIdx []int) [][]any {
	if len(keyIdx) == 0 {
		return rows
	}
	seen := make(map[string]struct{}, len(rows))
	out := make([][]any, 0, len(rows))
	var sb strings.Builder
	for _, row := range rows {
		sb.Reset()
		for _, i := range keyIdx {
			if i < len(row) {
				fmt.Fprintf(&sb, "%T:%v", row[i], row[i])
			}
			sb.WriteByte(0)
		}
		k := sb.String()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, row)
	}
	return out
}
