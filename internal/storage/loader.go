package storage

// This file implements the paging loop and the single-transaction lifecycle
// shared by every backend. Backends provide a PageTx that knows how to send
// one page with their conflict-skip INSERT; this file owns begin, paging,
// commit and rollback.
//
// Logging: on every successful page, a concise progress line is emitted with
// running totals and instantaneous rows/sec since the previous page.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PageFn sends one page of rows and returns how many were inserted.
type PageFn func(ctx context.Context, page int64, rows [][]any) (int64, error)

// LoadPages splits rows into pages of pageSize and calls fn for each page in
// order. It returns the inserted total and the number of pages that
// succeeded. On failure it returns a *LoadError with StageInsert and the
// 1-based number of the failing page; Kind is left for the caller to set.
func LoadPages(
	ctx context.Context,
	log *zap.Logger,
	rows [][]any,
	pageSize int,
	fn PageFn,
) (inserted, pages int64, err error) {
	if pageSize <= 0 {
		return 0, 0, fmt.Errorf("storage: page size must be > 0, got %d", pageSize)
	}
	if fn == nil {
		return 0, 0, fmt.Errorf("storage: page function must not be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var (
		start     = time.Now()
		lastFlush = start
	)

	for off := 0; off < len(rows); off += pageSize {
		if err := ctx.Err(); err != nil {
			return inserted, pages, &LoadError{Stage: StageInsert, Page: pages + 1, Err: err}
		}

		end := off + pageSize
		if end > len(rows) {
			end = len(rows)
		}
		page := pages + 1

		n, err := fn(ctx, page, rows[off:end])
		if err != nil {
			log.Warn("page failed",
				zap.Int64("page", page),
				zap.Int("rows", end-off),
				zap.Int64("total_inserted", inserted),
				zap.Error(err),
			)
			return inserted, pages, &LoadError{Stage: StageInsert, Page: page, Err: err}
		}
		inserted += n
		pages = page

		now := time.Now()
		sinceLast := now.Sub(lastFlush)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(end-off) / sinceLast.Seconds()
		}
		log.Debug("page sent",
			zap.Int64("page", page),
			zap.Float64("rps", rps),
			zap.Int64("inserted", n),
			zap.Int64("total_inserted", inserted),
			zap.Duration("elapsed", now.Sub(start).Truncate(time.Millisecond)),
			zap.Duration("since_last", sinceLast.Truncate(time.Millisecond)),
		)
		lastFlush = now
	}
	return inserted, pages, nil
}

// PageTx is an open transaction able to insert pages with conflict-skip
// semantics.
type PageTx interface {
	InsertPage(ctx context.Context, rows [][]any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// BeginFn opens a PageTx.
type BeginFn func(ctx context.Context) (PageTx, error)

// LoadInTx runs the begin, page, commit lifecycle. Any failure after begin
// rolls the transaction back; the rollback itself is not cancelled by ctx.
func LoadInTx(
	ctx context.Context,
	log *zap.Logger,
	begin BeginFn,
	rows [][]any,
	pageSize int,
	classify Classifier,
) (LoadResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	res := LoadResult{Submitted: int64(len(rows)), State: StateRolledBack}

	tx, err := begin(ctx)
	if err != nil {
		return res, NewLoadError(StageBegin, 0, err, classify)
	}

	rollback := func(cause error) {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			log.Error("rollback failed", zap.NamedError("cause", cause), zap.Error(rbErr))
			return
		}
		log.Info("transaction rolled back", zap.Int64("pages_sent", res.Pages))
	}

	res.Inserted, res.Pages, err = LoadPages(ctx, log, rows, pageSize,
		func(ctx context.Context, _ int64, page [][]any) (int64, error) {
			return tx.InsertPage(ctx, page)
		})
	if err != nil {
		rollback(err)
		var le *LoadError
		if !errors.As(err, &le) {
			return res, NewLoadError(StageInsert, 0, err, classify)
		}
		le.Kind = Classify(le.Err, classify)
		return res, le
	}

	if err := tx.Commit(ctx); err != nil {
		rollback(err)
		return res, NewLoadError(StageCommit, 0, err, classify)
	}

	res.State = StateCommitted
	res.Skipped = res.Submitted - res.Inserted
	log.Info("transaction committed",
		zap.Int64("submitted", res.Submitted),
		zap.Int64("inserted", res.Inserted),
		zap.Int64("skipped", res.Skipped),
		zap.Int64("pages", res.Pages),
	)
	return res, nil
}
