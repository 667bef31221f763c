package ddl

import (
	"context"

	"github.com/jpedro002/middleware/internal/schema"
)

// Execer is the subset of storage.Repository needed to apply DDL.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// EnsureTable creates the schema and the table if they do not exist. It is
// idempotent.
func EnsureTable(ctx context.Context, repo Execer, t schema.Table) error {
	if s := BuildCreateSchemaSQL(t); s != "" {
		if err := repo.Exec(ctx, s); err != nil {
			return err
		}
	}
	sql, err := BuildCreateTableSQL(t)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}
