// Package sqlite registers the "sqlite" store backend, backed by
// modernc.org/sqlite via database/sql. This is the default backend for
// locally imported funding datasets.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // driver registration

	"fundquery/internal/store"
	"fundquery/internal/store/dbsql"
)

func init() {
	store.Register("sqlite", func(ctx context.Context, cfg store.Config) (store.Store, error) {
		return Open(ctx, cfg.DSN)
	})
}

// Open connects to a SQLite database. DSN is passed straight to database/sql,
// e.g. "funding.db" or "file:funding.db?mode=ro".
func Open(ctx context.Context, dsn string) (*dbsql.Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return dbsql.New(db, dbsql.Dialect{
		Name:        "sqlite",
		Placeholder: func(int) string { return "?" },
	}), nil
}
