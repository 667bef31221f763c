// Command grupos migrates grupodemanda rows from a SQL dump into the
// grupos_ocorrencia table.
//
//	grupos load --file grupodemanda_202512021151.sql --dsn postgres://...
//	grupos preview --file dump.sql --preview 10
//	grupos validate --config pipeline.yaml
//
// Configuration is layered: built-in defaults, --config file, .env and
// environment variables, then flags.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	// register all backends with the storage factory.
	_ "github.com/jpedro002/middleware/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
