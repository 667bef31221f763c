// Package datasource defines where dump bytes come from. The loader only
// needs to open a named stream once per run.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw dump for reading. Name identifies the source in logs
// and error messages (a file path for local sources).
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}
