// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(conn *sql.DB, dialect Dialect) error {
	schema := sqliteSchema
	if dialect == Postgres {
		schema = postgresSchema
	}

	_, err := conn.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// DropSchema removes every table. Used by tests that share a Postgres database.
func DropSchema(conn *sql.DB) error {
	_, err := conn.Exec(`
		DROP TABLE IF EXISTS feedbacks;
		DROP TABLE IF EXISTS votes;
		DROP TABLE IF EXISTS students;
		DROP TABLE IF EXISTS "groups";
	`)
	if err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

const sqliteSchema = `
-- Students
CREATE TABLE IF NOT EXISTS students (
    student_id TEXT PRIMARY KEY CHECK (length(student_id) = 9),
    student_name TEXT NOT NULL,
    student_class TEXT NOT NULL DEFAULT '',
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

-- Groups (mirrored from the groups file, never deleted)
CREATE TABLE IF NOT EXISTS "groups" (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    teacher TEXT NOT NULL DEFAULT '',
    lab_number TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT ''
);

-- Votes
CREATE TABLE IF NOT EXISTS votes (
    student_id TEXT NOT NULL REFERENCES students(student_id),
    group_id TEXT NOT NULL,
    vote_time TIMESTAMP NOT NULL,
    PRIMARY KEY (student_id, group_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_group_id ON votes(group_id);

-- Feedback
CREATE TABLE IF NOT EXISTS feedbacks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    student_id TEXT NOT NULL,
    group_id TEXT NOT NULL,
    feedback TEXT NOT NULL,
    feedback_date TEXT NOT NULL,
    feedback_time TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_feedbacks_created_at ON feedbacks(created_at);
`

const postgresSchema = `
-- Students
CREATE TABLE IF NOT EXISTS students (
    student_id TEXT PRIMARY KEY CHECK (length(student_id) = 9),
    student_name TEXT NOT NULL,
    student_class TEXT NOT NULL DEFAULT '',
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

-- Groups (mirrored from the groups file, never deleted)
CREATE TABLE IF NOT EXISTS "groups" (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    teacher TEXT NOT NULL DEFAULT '',
    lab_number TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT ''
);

-- Votes
CREATE TABLE IF NOT EXISTS votes (
    student_id TEXT NOT NULL REFERENCES students(student_id),
    group_id TEXT NOT NULL,
    vote_time TIMESTAMP NOT NULL,
    PRIMARY KEY (student_id, group_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_group_id ON votes(group_id);

-- Feedback
CREATE TABLE IF NOT EXISTS feedbacks (
    id BIGSERIAL PRIMARY KEY,
    student_id TEXT NOT NULL,
    group_id TEXT NOT NULL,
    feedback TEXT NOT NULL,
    feedback_date TEXT NOT NULL,
    feedback_time TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_feedbacks_created_at ON feedbacks(created_at);
`
