// Package etl runs one grupos_ocorrencia migration: read the dump, extract
// tuples, build records, print the report and load them into the
// configured backend.
//
// The stages run in sequence on the calling goroutine. Storage backends are
// looked up through the storage factory, so callers must link them in
// (cmd/grupos imports storage/all).
package etl

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jpedro002/middleware/internal/config"
	"github.com/jpedro002/middleware/internal/datasource"
	"github.com/jpedro002/middleware/internal/datasource/file"
	"github.com/jpedro002/middleware/internal/datasource/httpds"
	"github.com/jpedro002/middleware/internal/errlog"
	"github.com/jpedro002/middleware/internal/metrics"
	"github.com/jpedro002/middleware/internal/parser/sqldump"
	"github.com/jpedro002/middleware/internal/rejects"
	"github.com/jpedro002/middleware/internal/report"
	"github.com/jpedro002/middleware/internal/storage"
	"github.com/jpedro002/middleware/internal/transformer"
)

// Deps carries the run's collaborators. Zero values get defaults.
type Deps struct {
	// Out receives the console report. Defaults to os.Stdout.
	Out io.Writer

	// Console overrides the report writer built from Out.
	Console *report.Console

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// RunID tags logs and is returned in the Summary. Defaults to a new UUID.
	RunID string
}

// Summary describes what a run did.
type Summary struct {
	RunID       string
	Source      string
	Bytes       int64
	Fingerprint string

	Matches        int
	HeadersSkipped int
	Dropped        int
	Records        int

	// Loaded is false for preview runs and for runs that failed before
	// Load was called.
	Loaded bool
	Load   storage.LoadResult
}

// Test seams.
var (
	openSourceFn    = openSource
	newRepositoryFn = storage.New
)

type run struct {
	p       config.Pipeline
	log     *zap.Logger
	console *report.Console
	sum     Summary
}

func newRun(p config.Pipeline, deps Deps) *run {
	if deps.RunID == "" {
		deps.RunID = uuid.NewString()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	console := deps.Console
	if console == nil {
		out := deps.Out
		if out == nil {
			out = os.Stdout
		}
		console = report.NewConsole(out)
	}
	return &run{
		p:       p,
		log:     log.With(zap.String("run_id", deps.RunID), zap.String("job", p.Job)),
		console: console,
		sum:     Summary{RunID: deps.RunID, Source: p.SourceName()},
	}
}

// Preview reads, extracts and transforms the dump and prints the count and
// the first records. It never opens a database connection.
func Preview(ctx context.Context, p config.Pipeline, deps Deps) (Summary, error) {
	r := newRun(p, deps)
	recs, err := r.prepare(ctx)
	if err != nil {
		return r.sum, err
	}
	r.report(recs)
	return r.sum, nil
}

// Run performs a full migration. A load failure is printed on the console,
// logged and returned; the transaction has already been rolled back.
func Run(ctx context.Context, p config.Pipeline, deps Deps) (Summary, error) {
	start := time.Now()
	r := newRun(p, deps)

	recs, err := r.prepare(ctx)
	if err != nil {
		return r.sum, err
	}
	r.report(recs)

	if err := r.load(ctx, recs); err != nil {
		r.console.Failure(err)
		r.log.Error("load failed", zap.Error(err))
		r.recordFailure(err)
		return r.sum, err
	}
	r.console.Success(r.sum.Load)
	r.log.Info("run complete",
		zap.Int64("inserted", r.sum.Load.Inserted),
		zap.Int64("skipped", r.sum.Load.Skipped),
		zap.Int64("pages", r.sum.Load.Pages),
		zap.Duration("elapsed", time.Since(start)),
	)
	return r.sum, nil
}

func (r *run) report(recs []transformer.GrupoOcorrencia) {
	r.console.Count(len(recs))
	r.console.Preview(recs, r.p.Runtime.Preview)
}

// prepare runs the read, extract and transform steps.
func (r *run) prepare(ctx context.Context) ([]transformer.GrupoOcorrencia, error) {
	text, err := r.read(ctx)
	if err != nil {
		return nil, err
	}

	res, err := r.extract(text.Content)
	if err != nil {
		return nil, err
	}

	t0 := time.Now()
	recs, err := transformer.Build(res.Tuples)
	metrics.RecordStep(r.p.Job, metrics.StepTransform, err, time.Since(t0))
	if err != nil {
		r.log.Error("transform failed", zap.Error(err))
		return nil, fmt.Errorf("transform: %w", err)
	}
	r.sum.Records = len(recs)
	metrics.RecordRow(r.p.Job, metrics.RowsRecords, int64(len(recs)))
	return recs, nil
}

func (r *run) read(ctx context.Context) (file.Text, error) {
	t0 := time.Now()
	text, err := r.readText(ctx)
	metrics.RecordStep(r.p.Job, metrics.StepRead, err, time.Since(t0))
	if err != nil {
		r.log.Error("read failed", zap.String("source", r.sum.Source), zap.Error(err))
		return file.Text{}, fmt.Errorf("read dump: %w", err)
	}

	r.sum.Bytes = text.Size
	r.sum.Fingerprint = text.Fingerprint
	r.log.Info("dump read",
		zap.String("source", r.sum.Source),
		zap.Int64("bytes", text.Size),
		zap.String("xxh3", text.Fingerprint),
	)
	return text, nil
}

func (r *run) readText(ctx context.Context) (file.Text, error) {
	src, err := openSourceFn(r.p.Source)
	if err != nil {
		return file.Text{}, err
	}
	return file.ReadText(ctx, src)
}

func (r *run) extract(text string) (sqldump.Result, error) {
	mode, err := sqldump.ParseMode(r.p.Parser.Mode)
	if err != nil {
		return sqldump.Result{}, err
	}
	skip, err := sqldump.ParseHeaderSkip(r.p.Parser.HeaderSkip)
	if err != nil {
		return sqldump.Result{}, err
	}

	t0 := time.Now()
	res := sqldump.Extract(text, sqldump.Options{
		Mode:           mode,
		HeaderSkip:     skip,
		ExpectedFields: r.p.Parser.ExpectedFields,
	})
	metrics.RecordStep(r.p.Job, metrics.StepExtract, nil, time.Since(t0))
	metrics.RecordRow(r.p.Job, metrics.RowsMatched, int64(res.Matches))
	metrics.RecordRow(r.p.Job, metrics.RowsHeaderSkipped, int64(res.HeadersSkipped))
	metrics.RecordRow(r.p.Job, metrics.RowsDropped, int64(res.Dropped))

	r.sum.Matches = res.Matches
	r.sum.HeadersSkipped = res.HeadersSkipped
	r.sum.Dropped = res.Dropped
	r.log.Info("tuples extracted",
		zap.String("mode", string(mode)),
		zap.String("header_skip", string(skip)),
		zap.Int("matches", res.Matches),
		zap.Int("headers_skipped", res.HeadersSkipped),
		zap.Int("kept", len(res.Tuples)),
		zap.Int("dropped", res.Dropped),
	)

	if path := r.p.Parser.RejectsPath; path != "" {
		if err := writeRejects(path, res.Rejects); err != nil {
			return sqldump.Result{}, err
		}
		r.log.Info("rejects written", zap.String("path", path), zap.Int("count", len(res.Rejects)))
	}
	return res, nil
}

// recordFailure appends constraint and data failures to the error log.
// The run already failed, so a write error is only logged.
func (r *run) recordFailure(err error) {
	path := r.p.Storage.DB.ErrorLogPath
	if path == "" || !errlog.Loggable(err) {
		return
	}
	entry, _ := errlog.FromError(err, r.p.Storage.DB.Table, r.sum.RunID, time.Now())
	doc, werr := errlog.Append(path, entry)
	if werr != nil {
		r.log.Warn("error log not written", zap.String("path", path), zap.Error(werr))
		return
	}
	r.log.Info("error logged",
		zap.String("path", path),
		zap.String("constraint", entry.ConstraintName),
		zap.Int("total", doc.Total),
	)
}

func writeRejects(path string, rs []sqldump.Reject) error {
	w, err := rejects.Create(path)
	if err != nil {
		return err
	}
	if err := w.WriteAll(rs); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (r *run) load(ctx context.Context, recs []transformer.GrupoOcorrencia) error {
	t0 := time.Now()
	err := r.loadRecords(ctx, recs)
	metrics.RecordStep(r.p.Job, metrics.StepLoad, err, time.Since(t0))
	metrics.RecordRow(r.p.Job, metrics.RowsInserted, r.sum.Load.Inserted)
	metrics.RecordRow(r.p.Job, metrics.RowsSkipped, r.sum.Load.Skipped)
	metrics.RecordBatches(r.p.Job, r.sum.Load.Pages)
	return err
}

func (r *run) loadRecords(ctx context.Context, recs []transformer.GrupoOcorrencia) error {
	connectTimeout, err := r.p.Runtime.ConnectTimeoutDuration()
	if err != nil {
		return err
	}
	table := transformer.Table(r.p.Storage.DB.Table)
	kind := r.p.Storage.Kind

	r.log.Info("connecting",
		zap.String("storage", kind),
		zap.String("table", table.Name),
		zap.Int("batch_size", r.p.Runtime.BatchSize),
	)
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:           kind,
		DSN:            r.p.Storage.DB.DSN,
		Table:          table,
		ConnectTimeout: connectTimeout,
		Logger:         r.log,
	})
	if err != nil {
		return err
	}
	defer repo.Close()

	if r.p.Storage.DB.AutoCreateTable {
		if err := storage.EnsureTable(ctx, kind, repo, table); err != nil {
			return fmt.Errorf("ensure table %s: %w", table.Name, err)
		}
	}

	r.sum.Loaded = true
	res, err := repo.Load(ctx, transformer.Columns, transformer.Rows(recs), r.p.Runtime.BatchSize)
	r.sum.Load = res
	return err
}

// openSource builds the datasource selected by cfg.Kind.
func openSource(cfg config.Source) (datasource.Source, error) {
	switch cfg.Kind {
	case "", "file":
		return file.NewLocal(cfg.File.Path), nil
	case "http":
		timeout, err := cfg.HTTP.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		client := httpds.NewClient(httpds.Config{Timeout: timeout, MaxRetries: cfg.HTTP.MaxRetries})
		return httpds.NewSource(cfg.HTTP.URL, client), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
