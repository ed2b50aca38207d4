// Package sqlstore persists documents and summaries over database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const sqlitePrefix = "sqlite://"

// OpenDB picks the driver from the URL: `sqlite://path` opens an embedded
// database, anything else goes to postgres through pgx.
func OpenDB(ctx context.Context, databaseURL string) (*sql.DB, Dialect, error) {
	dialect, driver, dsn := resolveDSN(databaseURL)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("sql open: %w", err)
	}
	switch dialect {
	case DialectSQLite:
		// One writer; a second connection would see SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("db ping: %w", err)
	}
	return db, dialect, nil
}

func resolveDSN(databaseURL string) (Dialect, string, string) {
	raw := strings.TrimSpace(databaseURL)
	if path, ok := strings.CutPrefix(raw, sqlitePrefix); ok {
		if path == "" {
			path = "summarizer.db"
		}
		return DialectSQLite, "sqlite", "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	return DialectPostgres, "pgx", raw
}
