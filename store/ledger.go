// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/classroom-vote/db"
	"github.com/danielhkuo/classroom-vote/models"
)

// Ledger is the durable set of (student, group) votes. Every mutation runs in
// one transaction holding the student's lock, so the duplicate and limit
// checks cannot race with another request for the same student.
type Ledger struct {
	base
}

func NewLedger(conn *sql.DB, dialect db.Dialect) *Ledger {
	return &Ledger{base: newBase(conn, dialect)}
}

// VotesFor returns the student's committed votes ordered by vote time.
func (l *Ledger) VotesFor(ctx context.Context, studentID string) ([]models.Vote, error) {
	return listVotes(ctx, l.conn, studentID)
}

// Cast records a vote and returns the student's new vote count.
func (l *Ledger) Cast(ctx context.Context, studentID, groupID string) (int, error) {
	var total int
	err := db.WithTx(ctx, l.conn, nil, func(tx *sql.Tx) error {
		if err := l.lockUnconfirmed(ctx, tx, studentID); err != nil {
			return err
		}

		n, err := l.cast(ctx, tx, studentID, groupID)
		total = n
		return err
	})
	return total, err
}

// Retract removes a vote and returns the student's new vote count.
func (l *Ledger) Retract(ctx context.Context, studentID, groupID string) (int, error) {
	var total int
	err := db.WithTx(ctx, l.conn, nil, func(tx *sql.Tx) error {
		if err := l.lockUnconfirmed(ctx, tx, studentID); err != nil {
			return err
		}

		n, err := retract(ctx, tx, studentID, groupID)
		total = n
		return err
	})
	return total, err
}

// Toggle retracts the vote if present, otherwise casts it under the usual limit.
func (l *Ledger) Toggle(ctx context.Context, studentID, groupID string) (models.Toggle, error) {
	var t models.Toggle
	err := db.WithTx(ctx, l.conn, nil, func(tx *sql.Tx) error {
		if err := l.lockUnconfirmed(ctx, tx, studentID); err != nil {
			return err
		}

		present, err := hasVote(ctx, tx, studentID, groupID)
		if err != nil {
			return err
		}

		if present {
			n, err := retract(ctx, tx, studentID, groupID)
			t = models.Toggle{Voting: false, Total: n}
			return err
		}

		n, err := l.cast(ctx, tx, studentID, groupID)
		t = models.Toggle{Voting: true, Total: n}
		return err
	})
	if err != nil {
		return models.Toggle{}, err
	}
	return t, nil
}

// Confirm finalizes exactly three votes and locks the student in one
// transaction. Staged votes are replaced by groupIDs; when groupIDs is empty
// the staged votes themselves are finalized and must number exactly three.
// All rows share one vote time. Nothing is applied if any step fails.
func (l *Ledger) Confirm(ctx context.Context, studentID string, groupIDs []string) ([]models.Vote, error) {
	if len(groupIDs) > 0 {
		if err := checkSelection(groupIDs); err != nil {
			return nil, err
		}
	}

	var confirmed []models.Vote
	err := db.WithTx(ctx, l.conn, nil, func(tx *sql.Tx) error {
		locked, err := l.lockStudent(ctx, tx, studentID)
		if err != nil {
			return err
		}
		if locked {
			return models.ErrAlreadyConfirmed
		}

		selection := groupIDs
		if len(selection) == 0 {
			staged, err := listVotes(ctx, tx, studentID)
			if err != nil {
				return err
			}
			if len(staged) != models.MaxVotes {
				return models.ErrWrongCount
			}
			for _, v := range staged {
				selection = append(selection, v.GroupID)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE student_id = $1`, studentID); err != nil {
			return fmt.Errorf("failed to clear staged votes: %w", err)
		}

		now := l.now()
		confirmed = make([]models.Vote, 0, len(selection))
		for _, groupID := range selection {
			if err := insertVote(ctx, tx, studentID, groupID, now); err != nil {
				return err
			}
			confirmed = append(confirmed, models.Vote{StudentID: studentID, GroupID: groupID, VoteTime: now})
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE students SET has_voted = $1 WHERE student_id = $2`, true, studentID,
		); err != nil {
			return fmt.Errorf("failed to lock student: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

func (l *Ledger) lockUnconfirmed(ctx context.Context, tx *sql.Tx, studentID string) error {
	locked, err := l.lockStudent(ctx, tx, studentID)
	if err != nil {
		return err
	}
	if locked {
		return models.ErrStudentLocked
	}
	return nil
}

func (l *Ledger) cast(ctx context.Context, tx *sql.Tx, studentID, groupID string) (int, error) {
	present, err := hasVote(ctx, tx, studentID, groupID)
	if err != nil {
		return 0, err
	}
	if present {
		return 0, models.ErrDuplicateVote
	}

	n, err := countVotes(ctx, tx, studentID)
	if err != nil {
		return 0, err
	}
	if n >= models.MaxVotes {
		return 0, models.ErrVoteLimitExceeded
	}

	if err := insertVote(ctx, tx, studentID, groupID, l.now()); err != nil {
		return 0, err
	}
	return n + 1, nil
}

func retract(ctx context.Context, tx *sql.Tx, studentID, groupID string) (int, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM votes WHERE student_id = $1 AND group_id = $2`, studentID, groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete vote: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return 0, models.ErrVoteNotFound
	}
	return countVotes(ctx, tx, studentID)
}

func insertVote(ctx context.Context, tx *sql.Tx, studentID, groupID string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO votes (student_id, group_id, vote_time)
		VALUES ($1, $2, $3)
	`, studentID, groupID, at)
	if db.IsUniqueViolation(err) {
		return models.ErrDuplicateVote
	}
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

// checkSelection requires exactly MaxVotes distinct, non-empty group ids.
func checkSelection(groupIDs []string) error {
	if len(groupIDs) != models.MaxVotes {
		return models.ErrWrongCount
	}
	seen := make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		if id == "" || seen[id] {
			return models.ErrWrongCount
		}
		seen[id] = true
	}
	return nil
}
