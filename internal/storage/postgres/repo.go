// Package postgres implements storage.Repository on a single pgx v5
// connection. Each page is sent as one pgx.Batch of conflict-skip INSERTs
// inside one transaction.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/jpedro002/middleware/internal/storage"
	pgddl "github.com/jpedro002/middleware/internal/storage/postgres/ddl"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN            string        // connection string for pgx.ParseConfig
	Table          string        // possibly schema-qualified target table
	KeyColumns     []string      // conflict target columns
	ConnectTimeout time.Duration // zero keeps the pgx default
	Logger         *zap.Logger
}

// conn is the subset of *pgx.Conn the repository uses.
type conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close(ctx context.Context) error
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	conn conn
	cfg  Config
	log  *zap.Logger
}

// connect is a test hook for establishing the connection.
var connect = func(ctx context.Context, cfg Config) (conn, error) {
	pc, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.ConnectTimeout > 0 {
		pc.ConnectTimeout = cfg.ConnectTimeout
	}
	return pgx.ConnectConfig(ctx, pc)
}

// NewRepository opens one connection and returns a Close function for
// cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if len(cfg.KeyColumns) == 0 {
		return nil, nil, fmt.Errorf("postgres: key columns are required for ON CONFLICT")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c, err := connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("postgres connected", zap.String("table", cfg.Table))

	r := &Repository{conn: c, cfg: cfg, log: log}
	closed := false
	closeFn := func() {
		if closed {
			return
		}
		closed = true
		if err := c.Close(context.Background()); err != nil {
			log.Warn("postgres close", zap.Error(err))
		}
	}
	return r, closeFn, nil
}

// Load implements storage.Repository.Load.
func (r *Repository) Load(ctx context.Context, columns []string, rows [][]any, pageSize int) (storage.LoadResult, error) {
	insert := buildInsertSQL(r.cfg.Table, columns, r.cfg.KeyColumns)
	r.log.Debug("postgres load", zap.String("sql", insert), zap.Int("rows", len(rows)), zap.Int("page_size", pageSize))

	begin := func(ctx context.Context) (storage.PageTx, error) {
		tx, err := r.conn.Begin(ctx)
		if err != nil {
			return nil, err
		}
		return &pageTx{tx: tx, insert: insert, width: len(columns)}, nil
	}
	return storage.LoadInTx(ctx, r.log, begin, rows, pageSize, classify)
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	_, err := r.conn.Exec(ctx, sql)
	return err
}

// pageTx sends pages through a pgx transaction.
type pageTx struct {
	tx     pgx.Tx
	insert string
	width  int
}

// InsertPage queues one INSERT per row and sends them in one round trip.
// Rows skipped by ON CONFLICT report zero rows affected.
func (p *pageTx) InsertPage(ctx context.Context, rows [][]any) (int64, error) {
	b := &pgx.Batch{}
	for i, row := range rows {
		if len(row) != p.width {
			return 0, fmt.Errorf("row %d has %d values, want %d", i, len(row), p.width)
		}
		b.Queue(p.insert, row...)
	}

	br := p.tx.SendBatch(ctx, b)
	var inserted int64
	for range rows {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return inserted, err
		}
		inserted += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return inserted, err
	}
	return inserted, nil
}

func (p *pageTx) Commit(ctx context.Context) error   { return p.tx.Commit(ctx) }
func (p *pageTx) Rollback(ctx context.Context) error { return p.tx.Rollback(ctx) }

// buildInsertSQL renders
//
//	INSERT INTO "s"."t" ("a","b") VALUES ($1,$2) ON CONFLICT ("id") DO NOTHING
func buildInsertSQL(table string, columns, keys []string) string {
	ph := make([]string, len(columns))
	for i := range columns {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		pgddl.QuoteFQN(table),
		strings.Join(mapIdent(columns), ", "),
		strings.Join(ph, ", "),
		strings.Join(mapIdent(keys), ", "),
	)
}

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgddl.QuoteIdent(c)
	}
	return out
}
