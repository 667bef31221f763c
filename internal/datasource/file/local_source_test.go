package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDump(t *testing.T, content []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "grupodemanda.sql")
	require.NoError(t, os.WriteFile(p, content, 0o644))
	return p
}

// TestLocalOpen covers success, a missing dump and a pre-canceled context.
func TestLocalOpen(t *testing.T) {
	t.Parallel()

	type tc struct {
		name            string
		prepare         func(t *testing.T) string
		canceled        bool
		wantErrIs       error
		wantErrContains string
		wantContent     string
	}

	cases := []tc{
		{
			name:        "success_reads_content",
			prepare:     func(t *testing.T) string { return writeDump(t, []byte("INSERT INTO t VALUES (1);")) },
			wantContent: "INSERT INTO t VALUES (1);",
		},
		{
			name: "missing_dump_wraps_not_exist",
			prepare: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.sql")
			},
			wantErrIs:       os.ErrNotExist,
			wantErrContains: "missing.sql",
		},
		{
			name:      "pre_canceled_context_short_circuits",
			prepare:   func(t *testing.T) string { return writeDump(t, []byte("ignored")) },
			canceled:  true,
			wantErrIs: context.Canceled,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			if c.canceled {
				var cancel context.CancelFunc
				ctx, cancel = context.WithCancel(ctx)
				cancel()
			}

			src := NewLocal(c.prepare(t))
			rc, err := src.Open(ctx)

			if c.wantErrIs != nil {
				require.ErrorIs(t, err, c.wantErrIs)
				if c.wantErrContains != "" {
					assert.Contains(t, err.Error(), c.wantErrContains)
				}
				assert.Nil(t, rc)
				return
			}

			require.NoError(t, err)
			defer rc.Close()
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, c.wantContent, string(got))
		})
	}
}

func TestLocalName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "dumps/a.sql", NewLocal("dumps/a.sql").Name())
}

// BenchmarkLocalOpen_Success measures the cost of opening and closing a
// small dump.
func BenchmarkLocalOpen_Success(b *testing.B) {
	p := filepath.Join(b.TempDir(), "data.sql")
	if err := os.WriteFile(p, []byte("payload"), 0o644); err != nil {
		b.Fatalf("write test file: %v", err)
	}

	src := NewLocal(p)
	ctx := context.Background()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rc, err := src.Open(ctx)
		if err != nil {
			b.Fatal(err)
		}
		if err := rc.Close(); err != nil {
			b.Fatal(err)
		}
	}
}
