// Package rejects records dump groups that extraction dropped, one JSON
// object per line, so a run can be audited without changing its outcome.
package rejects

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"

	"github.com/jpedro002/middleware/internal/parser/sqldump"
)

// Writer appends rejects as JSON lines.
type Writer struct {
	bw     *bufio.Writer
	closer io.Closer
	count  int
}

// NewWriter wraps w. Close flushes but does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// Create truncates or creates path and returns a Writer over it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("rejects: create %s: %w", path, err)
	}
	w := NewWriter(f)
	w.closer = f
	return w, nil
}

// Write encodes one reject.
func (w *Writer) Write(r sqldump.Reject) error {
	b, err := sonic.Marshal(r)
	if err != nil {
		return fmt.Errorf("rejects: encode: %w", err)
	}
	if _, err := w.bw.Write(b); err != nil {
		return err
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		return err
	}
	w.count++
	return nil
}

// WriteAll encodes every reject in order.
func (w *Writer) WriteAll(rs []sqldump.Reject) error {
	for _, r := range rs {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Count is the number of rejects written so far.
func (w *Writer) Count() int { return w.count }

// Close flushes buffered lines and closes the file opened by Create.
func (w *Writer) Close() error {
	ferr := w.bw.Flush()
	if w.closer != nil {
		if err := w.closer.Close(); err != nil && ferr == nil {
			ferr = err
		}
	}
	return ferr
}
