package etl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"

	"github.com/jpedro002/middleware/internal/config"
	"github.com/jpedro002/middleware/internal/errlog"
	"github.com/jpedro002/middleware/internal/metrics"
	"github.com/jpedro002/middleware/internal/report"
	"github.com/jpedro002/middleware/internal/storage"
	_ "github.com/jpedro002/middleware/internal/storage/sqlite"
	"github.com/jpedro002/middleware/internal/transformer"
)

// Tests in this file swap package-level seams or the global metrics backend
// and do not run in parallel.

const columnList = `(id, ativo, data_criacao, descricao, nome, criado_por, atualizado_por, fundo_municipal_id, ordem)`

func tuple(id int) string {
	return fmt.Sprintf("(%d,true,'2025-01-01 10:00:00.5','d%d','n%d',x,y,NULL,z)", id, id, id)
}

func writeDump(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.sql")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// sqlitePipeline returns a config loading dumpPath into a fresh SQLite file.
func sqlitePipeline(t *testing.T, dumpPath string) (config.Pipeline, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "grupos.db")

	p := config.Default()
	p.Source.File.Path = dumpPath
	p.Storage.Kind = "sqlite"
	p.Storage.DB.DSN = dbPath
	p.Storage.DB.Table = "grupos_ocorrencia"
	p.Storage.DB.AutoCreateTable = true
	p.Runtime.BatchSize = 2
	return p, dbPath
}

func deps(out *bytes.Buffer) Deps {
	return Deps{Console: report.NewConsole(out, report.WithoutColor()), RunID: "test-run"}
}

func countIDs(t *testing.T, dbPath string) []int64 {
	t.Helper()
	db, err := sqlx.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var ids []int64
	require.NoError(t, db.Select(&ids, `SELECT id FROM grupos_ocorrencia ORDER BY id`))
	return ids
}

func TestRun_SQLiteIdempotent(t *testing.T) {
	dump := "INSERT INTO g " + columnList + " VALUES " + tuple(1) + ",\n" + tuple(2) + ",\n" + tuple(3) + ",(9,9);\n"
	p, dbPath := sqlitePipeline(t, writeDump(t, dump))
	p.Parser.RejectsPath = filepath.Join(t.TempDir(), "rejects.jsonl")

	var out bytes.Buffer
	sum, err := Run(context.Background(), p, deps(&out))
	require.NoError(t, err)

	assert.Equal(t, "test-run", sum.RunID)
	assert.Equal(t, 5, sum.Matches)
	assert.Equal(t, 1, sum.HeadersSkipped)
	assert.Equal(t, 1, sum.Dropped)
	assert.Equal(t, 3, sum.Records)
	assert.NotEmpty(t, sum.Fingerprint)
	assert.True(t, sum.Loaded)
	assert.Equal(t, int64(3), sum.Load.Inserted)
	assert.Equal(t, int64(2), sum.Load.Pages)
	assert.Equal(t, storage.StateCommitted, sum.Load.State)
	assert.Equal(t, []int64{1, 2, 3}, countIDs(t, dbPath))

	text := out.String()
	assert.Contains(t, text, "Total de registros a importar: 3")
	assert.Contains(t, text, "Primeiros 3 registros:")
	assert.Contains(t, text, "3 registros inseridos com sucesso!")

	f, err := os.Open(p.Parser.RejectsPath)
	require.NoError(t, err)
	defer f.Close()
	var lines int
	for sc := bufio.NewScanner(f); sc.Scan(); {
		lines++
	}
	assert.Equal(t, 1, lines)

	out.Reset()
	sum, err = Run(context.Background(), p, deps(&out))
	require.NoError(t, err)
	assert.Zero(t, sum.Load.Inserted)
	assert.Equal(t, int64(3), sum.Load.Skipped)
	assert.Contains(t, out.String(), "3 registros já existentes foram ignorados")
	assert.Equal(t, []int64{1, 2, 3}, countIDs(t, dbPath))
}

func TestRun_FirstTupleTakenAsHeader(t *testing.T) {
	p, dbPath := sqlitePipeline(t, writeDump(t, "INSERT ... VALUES "+tuple(1)+","+tuple(2)))

	var out bytes.Buffer
	sum, err := Run(context.Background(), p, deps(&out))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Records)
	assert.Equal(t, []int64{2}, countIDs(t, dbPath))
}

func TestRun_EmptyDumpCommitsNothing(t *testing.T) {
	p, dbPath := sqlitePipeline(t, writeDump(t, ""))

	var out bytes.Buffer
	sum, err := Run(context.Background(), p, deps(&out))
	require.NoError(t, err)
	assert.Zero(t, sum.Records)
	assert.Equal(t, storage.StateCommitted, sum.Load.State)
	assert.Empty(t, countIDs(t, dbPath))
	assert.Contains(t, out.String(), "Total de registros a importar: 0")
}

func TestRun_MissingDump(t *testing.T) {
	p, _ := sqlitePipeline(t, filepath.Join(t.TempDir(), "absent.sql"))
	newRepositoryFn = func(context.Context, storage.Config) (storage.Repository, error) {
		t.Fatal("repository must not be opened")
		return nil, nil
	}
	t.Cleanup(func() { newRepositoryFn = storage.New })

	var out bytes.Buffer
	sum, err := Run(context.Background(), p, deps(&out))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, sum.Loaded)
	assert.Empty(t, out.String())
}

func TestRun_InvalidUTF8StopsRun(t *testing.T) {
	dump := "INSERT INTO g " + columnList + " VALUES " + tuple(1) + ",(2,true,'2025-01-01 10:00:00.5','caf\xe9','n2',x,y,NULL,z);"
	p, dbPath := sqlitePipeline(t, writeDump(t, dump))

	// Create the table up front so an empty result can be checked.
	repo, err := storage.New(context.Background(), storage.Config{Kind: p.Storage.Kind, DSN: dbPath, Table: transformer.Table(p.Storage.DB.Table)})
	require.NoError(t, err)
	require.NoError(t, storage.EnsureTable(context.Background(), p.Storage.Kind, repo, transformer.Table(p.Storage.DB.Table)))
	repo.Close()

	var out bytes.Buffer
	sum, err := Run(context.Background(), p, deps(&out))
	require.Error(t, err)
	assert.ErrorIs(t, err, encoding.ErrInvalidUTF8)
	assert.False(t, sum.Loaded)
	assert.Zero(t, sum.Records)
	assert.Empty(t, out.String())
	assert.Empty(t, countIDs(t, dbPath))
}

func TestRun_TransformErrorStopsRun(t *testing.T) {
	dump := "INSERT INTO g " + columnList + " VALUES " + tuple(1) + ",(x1,true,'2025-01-01 10:00:00.5','d','n',x,y,NULL,z);"
	p, _ := sqlitePipeline(t, writeDump(t, dump))

	var out bytes.Buffer
	_, err := Run(context.Background(), p, deps(&out))
	require.Error(t, err)

	var fe *transformer.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 1, fe.Tuple)
	assert.Equal(t, "id", fe.Column)
}

type fakeRepo struct {
	res    storage.LoadResult
	err    error
	closed bool
	rows   [][]any
}

func (f *fakeRepo) Load(_ context.Context, _ []string, rows [][]any, _ int) (storage.LoadResult, error) {
	f.rows = rows
	return f.res, f.err
}
func (f *fakeRepo) Exec(context.Context, string) error { return nil }
func (f *fakeRepo) Close()                             { f.closed = true }

func TestRun_LoadFailureRollsBack(t *testing.T) {
	dump := "INSERT INTO g " + columnList + " VALUES " + tuple(1) + "," + tuple(2) + ";"
	p, _ := sqlitePipeline(t, writeDump(t, dump))
	p.Storage.DB.AutoCreateTable = false

	loadErr := &storage.LoadError{Stage: storage.StageInsert, Kind: storage.KindConstraint, Page: 1, Err: errors.New("violates check")}
	repo := &fakeRepo{res: storage.LoadResult{Submitted: 2, State: storage.StateRolledBack}, err: loadErr}
	var gotCfg storage.Config
	newRepositoryFn = func(_ context.Context, cfg storage.Config) (storage.Repository, error) {
		gotCfg = cfg
		return repo, nil
	}
	t.Cleanup(func() { newRepositoryFn = storage.New })

	var out bytes.Buffer
	sum, err := Run(context.Background(), p, deps(&out))
	require.Error(t, err)

	var le *storage.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, storage.KindConstraint, le.Kind)
	assert.True(t, repo.closed)
	assert.Len(t, repo.rows, 2)
	assert.Equal(t, storage.StateRolledBack, sum.Load.State)
	assert.Contains(t, out.String(), "Erro ao inserir dados")
	assert.NotContains(t, out.String(), "inseridos com sucesso")

	assert.Equal(t, "sqlite", gotCfg.Kind)
	assert.Equal(t, transformer.Columns, gotCfg.Table.ColumnNames())
	assert.Equal(t, "grupos_ocorrencia", gotCfg.Table.Name)
}

func TestRun_ConnectFailure(t *testing.T) {
	p, _ := sqlitePipeline(t, writeDump(t, "INSERT ... VALUES "+tuple(1)+","+tuple(2)))
	connErr := &storage.LoadError{Stage: storage.StageConnect, Kind: storage.KindConnection, Err: errors.New("refused")}
	newRepositoryFn = func(context.Context, storage.Config) (storage.Repository, error) { return nil, connErr }
	t.Cleanup(func() { newRepositoryFn = storage.New })

	var out bytes.Buffer
	sum, err := Run(context.Background(), p, deps(&out))
	require.ErrorIs(t, err, connErr)
	assert.False(t, sum.Loaded)
	assert.Contains(t, out.String(), "Erro ao inserir dados")
}

func TestRun_ConstraintFailureWritesErrorLog(t *testing.T) {
	dump := "INSERT INTO g " + columnList + " VALUES " + tuple(1) + "," + tuple(2) + ";"
	p, _ := sqlitePipeline(t, writeDump(t, dump))
	p.Storage.DB.AutoCreateTable = false
	logPath := filepath.Join(t.TempDir(), "erros.json")
	p.Storage.DB.ErrorLogPath = logPath

	pgErr := &pgconn.PgError{
		Code:           "23503",
		Message:        `insert or update on table "grupos_ocorrencia" violates foreign key constraint "grupos_fundo_fkey"`,
		Detail:         `Key (fundo_municipal_id)=(42) is not present in table "fundo_municipal".`,
		ConstraintName: "grupos_fundo_fkey",
	}
	loadErr := &storage.LoadError{Stage: storage.StageInsert, Kind: storage.KindConstraint, Page: 1, Err: pgErr}
	newRepositoryFn = func(context.Context, storage.Config) (storage.Repository, error) {
		return &fakeRepo{res: storage.LoadResult{Submitted: 2, State: storage.StateRolledBack}, err: loadErr}, nil
	}
	t.Cleanup(func() { newRepositoryFn = storage.New })

	var out bytes.Buffer
	_, err := Run(context.Background(), p, deps(&out))
	require.ErrorIs(t, err, loadErr)

	doc, err := errlog.Load(logPath)
	require.NoError(t, err)
	require.Len(t, doc.ConstraintErrors, 1)
	e := doc.ConstraintErrors[0]
	assert.Equal(t, "test-run", e.RunID)
	assert.Equal(t, "grupos_ocorrencia", e.Table)
	assert.Equal(t, "constraint", e.Kind)
	assert.Equal(t, "insert", e.Stage)
	assert.EqualValues(t, 1, e.Page)
	assert.Equal(t, "grupos_fundo_fkey", e.ConstraintName)
	assert.Equal(t, "fundo_municipal_id", e.Column)
	assert.Equal(t, "42", e.Value)
	assert.Equal(t, pgErr.Message, e.Message)
	assert.Equal(t, []string{"42"}, doc.MissingValues["fundo_municipal_id"])
	assert.Equal(t, 1, doc.Total)
}

func TestRun_ConnectFailureSkipsErrorLog(t *testing.T) {
	p, _ := sqlitePipeline(t, writeDump(t, "INSERT ... VALUES "+tuple(1)+","+tuple(2)))
	logPath := filepath.Join(t.TempDir(), "erros.json")
	p.Storage.DB.ErrorLogPath = logPath
	connErr := &storage.LoadError{Stage: storage.StageConnect, Kind: storage.KindConnection, Err: errors.New("refused")}
	newRepositoryFn = func(context.Context, storage.Config) (storage.Repository, error) { return nil, connErr }
	t.Cleanup(func() { newRepositoryFn = storage.New })

	var out bytes.Buffer
	_, err := Run(context.Background(), p, deps(&out))
	require.ErrorIs(t, err, connErr)
	assert.NoFileExists(t, logPath)
}

func TestPreview_DoesNotTouchStorage(t *testing.T) {
	p, _ := sqlitePipeline(t, writeDump(t, "INSERT INTO g "+columnList+" VALUES "+tuple(1)+","+tuple(2)+";"))
	p.Runtime.Preview = 1
	newRepositoryFn = func(context.Context, storage.Config) (storage.Repository, error) {
		t.Fatal("repository must not be opened")
		return nil, nil
	}
	t.Cleanup(func() { newRepositoryFn = storage.New })

	var out bytes.Buffer
	sum, err := Preview(context.Background(), p, deps(&out))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Records)
	assert.False(t, sum.Loaded)
	assert.Contains(t, out.String(), "Primeiros 1 registros:")
	assert.Contains(t, out.String(), "n1")
	assert.NotContains(t, out.String(), "n2")
}

func TestPreview_HTTPSource(t *testing.T) {
	body := "INSERT INTO g " + columnList + " VALUES " + tuple(7) + ";"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	p := config.Default()
	p.Source.Kind = "http"
	p.Source.HTTP.URL = srv.URL + "/dump.sql"

	var out bytes.Buffer
	sum, err := Preview(context.Background(), p, deps(&out))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/dump.sql", sum.Source)
	assert.Equal(t, 1, sum.Records)
	assert.Equal(t, int64(len(body)), sum.Bytes)
}

func TestOpenSource_UnknownKind(t *testing.T) {
	_, err := openSource(config.Source{Kind: "ftp"})
	assert.ErrorContains(t, err, `unknown source kind "ftp"`)
}

type rowCounter struct {
	mu   sync.Mutex
	rows map[string]float64
}

func (c *rowCounter) IncCounter(name string, delta float64, l metrics.Labels) {
	if name != metrics.RowsTotal {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[l["kind"]] += delta
}
func (c *rowCounter) ObserveHistogram(string, float64, metrics.Labels) {}
func (c *rowCounter) Flush() error                                     { return nil }

func TestRun_RecordsMetrics(t *testing.T) {
	rc := &rowCounter{rows: map[string]float64{}}
	metrics.SetBackend(rc)
	t.Cleanup(metrics.Reset)

	dump := "INSERT INTO g " + columnList + " VALUES " + tuple(1) + "," + tuple(2) + ",(1,2);"
	p, _ := sqlitePipeline(t, writeDump(t, dump))

	var out bytes.Buffer
	_, err := Run(context.Background(), p, deps(&out))
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{
		metrics.RowsMatched:       4,
		metrics.RowsHeaderSkipped: 1,
		metrics.RowsDropped:       1,
		metrics.RowsRecords:       2,
		metrics.RowsInserted:      2,
	}, rc.rows)
	assert.True(t, strings.Contains(out.String(), "2 registros inseridos"))
}
