package ddl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpedro002/middleware/internal/schema"
)

func grupos() schema.Table {
	return schema.Table{
		Name: "fiscalizacao.grupos_ocorrencia",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeInt64},
			{Name: "nome", Type: schema.TypeText},
			{Name: "afinidades", Type: schema.TypeText, Nullable: true},
			{Name: "ativo", Type: schema.TypeBool},
			{Name: "data_criacao", Type: schema.TypeTimestamp},
		},
		Key: []string{"id"},
	}
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"name":       `"name"`,
		"":           `""`,
		"user name":  `"user name"`,
		`weird"name`: `"weird""name"`,
	}
	for in, want := range tests {
		assert.Equal(t, want, QuoteIdent(in), "QuoteIdent(%q)", in)
	}
}

func TestQuoteFQN(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"fiscalizacao"."grupos_ocorrencia"`, QuoteFQN("fiscalizacao.grupos_ocorrencia"))
	assert.Equal(t, `"grupos"`, QuoteFQN("grupos"))
	assert.Equal(t, `"a"."b"`, QuoteFQN("a..b"))
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(grupos())
	require.NoError(t, err)

	want := "CREATE TABLE IF NOT EXISTS \"fiscalizacao\".\"grupos_ocorrencia\" (\n" +
		"  \"id\" BIGINT NOT NULL,\n" +
		"  \"nome\" TEXT NOT NULL,\n" +
		"  \"afinidades\" TEXT,\n" +
		"  \"ativo\" BOOLEAN NOT NULL,\n" +
		"  \"data_criacao\" TIMESTAMP NOT NULL,\n" +
		"  PRIMARY KEY (\"id\")\n" +
		")"
	assert.Equal(t, want, got)
}

func TestBuildCreateSchemaSQL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "fiscalizacao"`, BuildCreateSchemaSQL(grupos()))
	assert.Empty(t, BuildCreateSchemaSQL(grupos().Renamed("grupos")))
}

type recordingExecer struct {
	stmts []string
	err   error
}

func (r *recordingExecer) Exec(_ context.Context, sql string) error {
	r.stmts = append(r.stmts, sql)
	return r.err
}

func TestEnsureTable(t *testing.T) {
	t.Parallel()

	rec := &recordingExecer{}
	require.NoError(t, EnsureTable(context.Background(), rec, grupos()))
	require.Len(t, rec.stmts, 2)
	assert.Contains(t, rec.stmts[0], "CREATE SCHEMA")
	assert.Contains(t, rec.stmts[1], "CREATE TABLE IF NOT EXISTS")

	rec = &recordingExecer{err: errors.New("denied")}
	assert.Error(t, EnsureTable(context.Background(), rec, grupos()))
	assert.Len(t, rec.stmts, 1)
}
