package sqldb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/jpedro002/middleware/internal/schema"
	"github.com/jpedro002/middleware/internal/storage"
)

// defaultPingTimeout bounds the initial ping when no connect timeout is set.
const defaultPingTimeout = 5 * time.Second

// Config holds the settings shared by every database/sql backend.
type Config struct {
	DSN            string
	Table          string
	KeyColumns     []string
	ConnectTimeout time.Duration
	Logger         *zap.Logger
}

// Repository is a database/sql implementation of storage.Repository pinned
// to one connection.
type Repository struct {
	db  *sqlx.DB
	d   Dialect
	cfg Config
	log *zap.Logger
}

// Open connects with d's driver and returns a Repository plus a Close
// function for cleanup.
func Open(ctx context.Context, d Dialect, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("%s: DSN must not be empty", d.Name)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sqlx.Open(d.DriverName, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: open: %w", d.Name, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%s: ping: %w", d.Name, err)
	}

	if d.AfterOpen != nil {
		if err := d.AfterOpen(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("%s: init connection: %w", d.Name, err)
		}
	}
	log.Debug("database connected", zap.String("driver", d.DriverName), zap.String("table", cfg.Table))

	closed := false
	closeFn := func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			log.Warn("database close", zap.String("driver", d.DriverName), zap.Error(err))
		}
	}
	return &Repository{db: db, d: d, cfg: cfg, log: log}, closeFn, nil
}

// Load implements storage.Repository.Load.
func (r *Repository) Load(ctx context.Context, columns []string, rows [][]any, pageSize int) (storage.LoadResult, error) {
	keyIdx, err := keyPositions(columns, r.cfg.KeyColumns)
	if err != nil {
		return storage.LoadResult{Submitted: int64(len(rows)), State: storage.StateRolledBack},
			storage.NewLoadError(storage.StageBegin, 0, err, nil)
	}

	begin := func(ctx context.Context) (storage.PageTx, error) {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return nil, err
		}
		return &pageTx{
			tx:      tx,
			d:       r.d,
			table:   r.d.table(r.cfg.Table),
			columns: r.d.quoteAll(columns),
			keys:    r.d.quoteAll(r.cfg.KeyColumns),
			keyIdx:  keyIdx,
		}, nil
	}
	return storage.LoadInTx(ctx, r.log, begin, rows, pageSize, r.d.Classify)
}

// Exec implements storage.Repository.Exec.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("%s: exec: %w", r.d.Name, err)
	}
	return nil
}

// EnsureTable applies d.CreateTable through repo.Exec.
func EnsureTable(ctx context.Context, d Dialect, repo storage.Repository, t schema.Table) error {
	stmts, err := d.CreateTable(t)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if err := repo.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

type pageTx struct {
	tx      *sqlx.Tx
	d       Dialect
	table   string
	columns []string
	keys    []string
	keyIdx  []int
}

// InsertPage sends the page as one multi-row statement, or several when the
// driver's parameter limit requires it.
func (p *pageTx) InsertPage(ctx context.Context, rows [][]any) (int64, error) {
	width := len(p.columns)
	for i, row := range rows {
		if len(row) != width {
			return 0, fmt.Errorf("row %d has %d values, want %d", i, len(row), width)
		}
	}
	if p.d.PreparePage != nil {
		rows = p.d.PreparePage(rows, p.keyIdx)
	}

	chunk := len(rows)
	if p.d.MaxParams > 0 && chunk*width > p.d.MaxParams {
		chunk = p.d.MaxParams / width
	}

	var inserted int64
	for off := 0; off < len(rows); off += chunk {
		end := off + chunk
		if end > len(rows) {
			end = len(rows)
		}
		part := rows[off:end]

		query := p.tx.Rebind(p.d.BuildInsert(p.table, p.columns, p.keys, len(part)))
		args := make([]any, 0, len(part)*width)
		for _, row := range part {
			args = append(args, row...)
		}

		res, err := p.tx.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}

func (p *pageTx) Commit(context.Context) error   { return p.tx.Commit() }
func (p *pageTx) Rollback(context.Context) error { return p.tx.Rollback() }

func keyPositions(columns, keys []string) ([]int, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("key columns are required for conflict-skip inserts")
	}
	idx := make([]int, 0, len(keys))
	for _, k := range keys {
		pos := -1
		for i, c := range columns {
			if c == k {
				pos = i
				break
			}
		}
		if pos < 0 {
			return nil, fmt.Errorf("key column %q is not among the loaded columns", k)
		}
		idx = append(idx, pos)
	}
	return idx, nil
}
