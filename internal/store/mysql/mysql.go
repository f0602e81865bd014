// Package mysql registers the "mysql" store backend via database/sql and
// the go-sql-driver.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // driver registration

	"fundquery/internal/store"
	"fundquery/internal/store/dbsql"
)

func init() {
	store.Register("mysql", func(ctx context.Context, cfg store.Config) (store.Store, error) {
		return Open(ctx, cfg.DSN)
	})
}

// Open connects to a MySQL database. DSN follows go-sql-driver syntax,
// e.g. "user:pass@tcp(localhost:3306)/funding".
func Open(ctx context.Context, dsn string) (*dbsql.Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	return dbsql.New(db, dbsql.Dialect{
		Name:        "mysql",
		Placeholder: func(int) string { return "?" },
	}), nil
}
