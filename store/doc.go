// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store implements the durable components behind the voting flow.

# Components

  - Identities: register, lock and look up students
  - Ledger: cast, retract, toggle and confirm votes
  - Feedbacks: append-only feedback log validated against the catalog
  - Reports: tallies and per-student ballots for the admin views

Each component is created with the connection pool and dialect:

	ledger := store.NewLedger(conn, db.SQLite)
	total, err := ledger.Cast(ctx, "123456789", "G1")

# Invariants

A student holds at most one vote per group (primary key) and at most
models.MaxVotes votes. Every mutation reads the student row with the
dialect's locking clause first, so the duplicate and limit checks and the
insert run as one serialized unit per student.

Confirm replaces staged votes with the final three, gives them one shared
vote time and locks the student, all in one transaction. A locked student
rejects every further vote operation.

# Errors

Expected refusals are the sentinel errors in the models package
(ErrDuplicateVote, ErrVoteLimitExceeded, ErrStudentLocked, ...). Anything
else is a storage fault wrapped with context.
*/
package store
