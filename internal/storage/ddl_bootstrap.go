package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/jpedro002/middleware/internal/schema"
)

// DDLBootstrapper creates the destination table (and its schema, where the
// dialect has one) if it does not exist, using repo.Exec.
type DDLBootstrapper func(ctx context.Context, repo Repository, table schema.Table) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the bootstrapper for a storage kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable runs the bootstrapper registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, table schema.Table) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("storage: no DDL bootstrapper registered for kind %q", kind)
	}
	if err := fn(ctx, repo, table); err != nil {
		return fmt.Errorf("storage: ensure table %s: %w", table.Name, err)
	}
	return nil
}
