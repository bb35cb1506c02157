// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// Dialect names the SQL backend. Queries use $N placeholders, which both
// drivers accept, so only locking, snapshots and DDL differ.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect maps a DATABASE_TYPE value to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch s {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql":
		return Postgres, nil
	}
	return "", fmt.Errorf("unsupported database type %q", s)
}

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// ForUpdate is appended to a SELECT that must lock the rows it reads.
// SQLite has no row locks; its write transactions are already exclusive
// because connections are opened with _txlock=immediate.
func (d Dialect) ForUpdate() string {
	if d == Postgres {
		return " FOR UPDATE"
	}
	return ""
}

// SnapshotOptions returns the options for a consistent read-only transaction.
func (d Dialect) SnapshotOptions() *sql.TxOptions {
	if d == Postgres {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return nil
}
