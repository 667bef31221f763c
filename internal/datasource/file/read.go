package file

import (
	"context"
	"fmt"
	"io"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jpedro002/middleware/internal/datasource"
)

// Text is a dump loaded fully into memory.
type Text struct {
	// Content is the decoded UTF-8 text, without a leading byte order mark.
	Content string

	// Size is the number of raw bytes read from the source.
	Size int64

	// Fingerprint is the xxh3-64 hash of the raw bytes in hex. Two runs over
	// the same dump log the same fingerprint.
	Fingerprint string
}

// ReadText reads the whole source into memory and decodes it as UTF-8.
//
// A UTF-8 byte order mark is dropped. Any invalid byte sequence fails the
// read; the error wraps encoding.ErrInvalidUTF8 and names the byte offset.
func ReadText(ctx context.Context, src datasource.Source) (Text, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return Text{}, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return Text{}, fmt.Errorf("read %s: %w", src.Name(), err)
	}

	if _, n, err := transform.Bytes(encoding.UTF8Validator, raw); err != nil {
		return Text{}, fmt.Errorf("decode %s: invalid UTF-8 at byte %d: %w", src.Name(), n, err)
	}

	decoded, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw)
	if err != nil {
		return Text{}, fmt.Errorf("decode %s: %w", src.Name(), err)
	}

	return Text{
		Content:     string(decoded),
		Size:        int64(len(raw)),
		Fingerprint: Fingerprint(raw),
	}, nil
}

// Fingerprint returns the xxh3-64 hash of b as 16 lowercase hex digits.
func Fingerprint(b []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(b))
}
