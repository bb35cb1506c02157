// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation and transactions.

# Backends

Two dialects are supported, selected by DATABASE_TYPE:

  - sqlite (default): modernc.org/sqlite, pure Go. Connections are opened
    with _txlock=immediate, a busy timeout and WAL, so write transactions
    are serialized.
  - postgres: github.com/lib/pq. Mutating transactions lock the student row
    with SELECT ... FOR UPDATE.

	conn, err := db.Open(ctx, db.SQLite, "classvote.db")

# Schema Creation

	if err := db.CreateSchema(conn, dialect); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - students: registered voters and their locked flag (has_voted)
  - groups: mirror of the groups file, upserted at startup
  - votes: one row per (student_id, group_id)
  - feedbacks: append-only feedback log

# Relationships

	students 1──* votes
	students 1──* feedbacks (not enforced)
	groups   1──* votes     (not enforced; stale groups are kept)

# Transactions

WithTx scopes a transaction to a function and guarantees commit or rollback
on every exit path:

	err := db.WithTx(ctx, conn, nil, func(tx *sql.Tx) error {
		...
	})

IsUniqueViolation recognizes constraint errors from both drivers.
*/
package db
