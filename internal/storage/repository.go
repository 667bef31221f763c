// Package storage defines the storage-agnostic loading contract and the
// backend registry. Backends (postgres, sqlite, mysql, mssql) register a
// Factory at init time; storage/all imports every backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jpedro002/middleware/internal/schema"
)

// DefaultPageSize is the number of rows sent per round trip.
const DefaultPageSize = 100

// Repository loads tabular rows into one destination table over a single
// connection.
type Repository interface {
	// Load inserts rows (aligned to columns) inside one transaction, pageSize
	// rows per round trip, skipping rows whose key already exists. It commits
	// once on success. On failure the transaction is rolled back and a
	// *LoadError is returned together with the partial result.
	Load(ctx context.Context, columns []string, rows [][]any, pageSize int) (LoadResult, error)

	// Exec runs a statement outside of Load, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Close releases the connection. It is safe to call more than once.
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind           string
	DSN            string
	Table          schema.Table
	ConnectTimeout time.Duration
	Logger         *zap.Logger
}

// Log returns the configured logger or a no-op logger.
func (c Config) Log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Registering the same kind
// twice replaces the earlier factory.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	if err := cfg.Table.Validate(); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
