// This adapter wires the Postgres backend into the storage-agnostic factory
// by registering a constructor and a DDL bootstrapper at init time. Callers
// obtain a Repository via storage.New without importing this package.
package postgres

import (
	"context"

	"github.com/jpedro002/middleware/internal/schema"
	"github.com/jpedro002/middleware/internal/storage"
	pgddl "github.com/jpedro002/middleware/internal/storage/postgres/ddl"
)

// Kind is the storage kind this package registers.
const Kind = "postgres"

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// wrappedRepo implements storage.Repository by delegating to *Repository
// while providing a Close method that calls the close function returned by
// NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:            cfg.DSN,
			Table:          cfg.Table.Name,
			KeyColumns:     cfg.Table.Key,
			ConnectTimeout: cfg.ConnectTimeout,
			Logger:         cfg.Log(),
		})
		if err != nil {
			return nil, storage.NewLoadError(storage.StageConnect, 0, err, classify)
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL(Kind, func(ctx context.Context, repo storage.Repository, t schema.Table) error {
		return pgddl.EnsureTable(ctx, repo, t)
	})
}
