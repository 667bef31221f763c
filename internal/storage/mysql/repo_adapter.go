// This adapter wires the MySQL backend into the storage factory.
package mysql

import (
	"context"

	"github.com/jpedro002/middleware/internal/schema"
	"github.com/jpedro002/middleware/internal/storage"
	"github.com/jpedro002/middleware/internal/storage/sqldb"
)

// Kind is the storage kind this package registers.
const Kind = "mysql"

// newRepository is a test hook; the default normalizes the DSN and opens a
// sqldb.Repository with Dialect.
var newRepository = func(ctx context.Context, cfg sqldb.Config) (*sqldb.Repository, func(), error) {
	dsn, err := normalizeDSN(cfg.DSN, cfg.ConnectTimeout)
	if err != nil {
		return nil, nil, err
	}
	cfg.DSN = dsn
	return sqldb.Open(ctx, Dialect, cfg)
}

// wrappedRepo adds a Close method calling the cleanup function returned by
// newRepository.
type wrappedRepo struct {
	*sqldb.Repository
	closeFn func()
}

// Close closes the underlying connection.
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
