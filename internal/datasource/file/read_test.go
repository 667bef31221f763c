package file

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
)

func TestReadText(t *testing.T) {
	t.Parallel()

	const body = "INSERT INTO \"g\" VALUES (1,true,'descrição');\n"

	plain := writeDump(t, []byte(body))
	withBOM := writeDump(t, append([]byte{0xEF, 0xBB, 0xBF}, body...))

	a, err := ReadText(context.Background(), NewLocal(plain))
	require.NoError(t, err)
	assert.Equal(t, body, a.Content)
	assert.Equal(t, int64(len(body)), a.Size)
	assert.Len(t, a.Fingerprint, 16)

	b, err := ReadText(context.Background(), NewLocal(withBOM))
	require.NoError(t, err)
	assert.Equal(t, body, b.Content, "BOM must be dropped")
	assert.Equal(t, int64(len(body)+3), b.Size)
	assert.NotEqual(t, a.Fingerprint, b.Fingerprint, "fingerprint covers raw bytes")
}

func TestReadText_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadText(context.Background(), NewLocal(filepath.Join(t.TempDir(), "nope.sql")))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadText_InvalidUTF8(t *testing.T) {
	t.Parallel()

	// Latin-1 "café": 0xE9 is not valid UTF-8 on its own.
	body := []byte("INSERT INTO g VALUES (1,true,'caf\xe9');\n")
	path := writeDump(t, body)

	text, err := ReadText(context.Background(), NewLocal(path))
	require.Error(t, err)
	assert.ErrorIs(t, err, encoding.ErrInvalidUTF8)
	assert.Contains(t, err.Error(), fmt.Sprintf("invalid UTF-8 at byte %d", bytes.IndexByte(body, 0xE9)))
	assert.Contains(t, err.Error(), path)
	assert.Empty(t, text.Content)
}

func TestFingerprint_Stable(t *testing.T) {
	t.Parallel()

	in := []byte("(1,true,'x')")
	assert.Equal(t, Fingerprint(in), Fingerprint(append([]byte(nil), in...)))
	assert.NotEqual(t, Fingerprint(in), Fingerprint([]byte("(2,true,'x')")))
	assert.Len(t, Fingerprint(nil), 16)
	assert.Equal(t, "2d06800538d394c2", Fingerprint(nil))
}
