// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/classroom-vote/db"
	"github.com/danielhkuo/classroom-vote/models"
)

// Clock returns the current time. Tests replace it to get fixed timestamps.
type Clock func() time.Time

// Timestamps are stored in UTC at microsecond precision, the finest both
// backends round-trip.
func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// base holds what every component needs: the pool, the dialect and a clock.
type base struct {
	conn    *sql.DB
	dialect db.Dialect
	now     Clock
}

func newBase(conn *sql.DB, dialect db.Dialect) base {
	return base{conn: conn, dialect: dialect, now: defaultClock}
}

// SetClock replaces the time source.
func (b *base) SetClock(c Clock) {
	b.now = c
}

// lockStudent reads the student's locked flag, taking the per-student lock
// for the rest of the transaction.
func (b *base) lockStudent(ctx context.Context, tx *sql.Tx, studentID string) (bool, error) {
	var locked bool
	err := tx.QueryRowContext(ctx,
		`SELECT has_voted FROM students WHERE student_id = $1`+b.dialect.ForUpdate(),
		studentID,
	).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, models.ErrStudentNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock student: %w", err)
	}
	return locked, nil
}

func countVotes(ctx context.Context, q querier, studentID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE student_id = $1`, studentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}

func hasVote(ctx context.Context, q querier, studentID, groupID string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM votes
			WHERE student_id = $1 AND group_id = $2
		)
	`, studentID, groupID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return exists, nil
}

func listVotes(ctx context.Context, q querier, studentID string) ([]models.Vote, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT student_id, group_id, vote_time
		FROM votes
		WHERE student_id = $1
		ORDER BY vote_time, group_id
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.StudentID, &v.GroupID, &v.VoteTime); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read votes: %w", err)
	}
	return votes, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
