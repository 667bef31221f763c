// This adapter wires the SQLite backend into the storage factory;
// registration happens in init.
package sqlite

import (
	"context"

	"github.com/jpedro002/middleware/internal/schema"
	"github.com/jpedro002/middleware/internal/storage"
	"github.com/jpedro002/middleware/internal/storage/sqldb"
)

// Kind is the storage kind this package registers.
const Kind = "sqlite"

// newRepository is a test hook that points to sqldb.Open by default.
var newRepository = func(ctx context.Context, cfg sqldb.Config) (*sqldb.Repository, func(), error) {
	return sqldb.Open(ctx, Dialect, cfg)
}

// wrappedRepo adds a Close method calling the cleanup function returned by
// newRepository.
type wrappedRepo struct {
	*sqldb.Repository
	closeFn func()
}

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, sqldb.Config{
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
		return sqldb.EnsureTable(ctx, Dialect, repo, t)
	})
}
