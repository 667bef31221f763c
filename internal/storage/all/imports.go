// Package all wires every built-in storage backend into the storage factory.
//
// It exists purely for side effects: importing it runs the init functions of
// each backend, which register their factories and DDL bootstrappers. The
// kinds made available are "postgres", "sqlite", "mysql" and "mssql".
//
//	import _ "github.com/jpedro002/middleware/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: "postgres", ...})
//	if err != nil {
//	    // handle error
//	}
//	defer repo.Close()
package all

import (
	_ "github.com/jpedro002/middleware/internal/storage/mssql"
	_ "github.com/jpedro002/middleware/internal/storage/mysql"
	_ "github.com/jpedro002/middleware/internal/storage/postgres"
	_ "github.com/jpedro002/middleware/internal/storage/sqlite"
)
