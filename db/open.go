// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLite connection settings. Every transaction starts with BEGIN IMMEDIATE
// so check-then-insert sequences cannot interleave with another writer.
var sqlitePragmas = []string{
	"_txlock=immediate",
	"_pragma=busy_timeout(10000)",
	"_pragma=foreign_keys(1)",
	"_pragma=journal_mode(WAL)",
}

// SQLiteDSN appends the connection settings the store relies on to a file path
// or file: URI.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(sqlitePragmas, "&")
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, dialect Dialect, url string) (*sql.DB, error) {
	dsn := url
	if dialect == SQLite {
		dsn = SQLiteDSN(url)
	}

	conn, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	if dialect == Postgres {
		conn.SetMaxOpenConns(20)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	return conn, nil
}
