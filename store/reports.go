// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/classroom-vote/db"
	"github.com/danielhkuo/classroom-vote/models"
)

// Reports serves the admin aggregation queries.
type Reports struct {
	base
}

func NewReports(conn *sql.DB, dialect db.Dialect) *Reports {
	return &Reports{base: newBase(conn, dialect)}
}

// Snapshot reads tallies and ballots in a single transaction so both views
// agree with each other.
func (r *Reports) Snapshot(ctx context.Context) (models.Report, error) {
	report := models.Report{TakenAt: r.now()}
	err := db.WithTx(ctx, r.conn, r.dialect.SnapshotOptions(), func(tx *sql.Tx) error {
		var err error
		if report.Tallies, err = tallies(ctx, tx); err != nil {
			return err
		}
		report.Ballots, err = ballots(ctx, tx)
		return err
	})
	if err != nil {
		return models.Report{}, err
	}
	return report, nil
}

func tallies(ctx context.Context, tx *sql.Tx) ([]models.GroupTally, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT g.id, g.name, g.teacher, g.lab_number, COUNT(v.student_id)
		FROM "groups" g
		LEFT JOIN votes v ON v.group_id = g.id
		GROUP BY g.id, g.name, g.teacher, g.lab_number
		ORDER BY COUNT(v.student_id) DESC, g.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tallies: %w", err)
	}
	defer rows.Close()

	list := []models.GroupTally{}
	for rows.Next() {
		var t models.GroupTally
		if err := rows.Scan(&t.GroupID, &t.GroupName, &t.Teacher, &t.LabNumber, &t.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tallies: %w", err)
	}

	// Votes for groups that never made it into storage are reported, not dropped.
	orphans, err := tx.QueryContext(ctx, `
		SELECT v.group_id, COUNT(*)
		FROM votes v
		LEFT JOIN "groups" g ON g.id = v.group_id
		WHERE g.id IS NULL
		GROUP BY v.group_id
		ORDER BY v.group_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orphan votes: %w", err)
	}
	defer orphans.Close()

	for orphans.Next() {
		t := models.GroupTally{GroupName: models.UnknownGroupName}
		if err := orphans.Scan(&t.GroupID, &t.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan orphan votes: %w", err)
		}
		slog.Warn("votes reference unknown group", "group_id", t.GroupID, "votes", t.Votes)
		list = append(list, t)
	}
	if err := orphans.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orphan votes: %w", err)
	}

	return list, nil
}

func ballots(ctx context.Context, tx *sql.Tx) ([]models.StudentBallot, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT s.student_id, s.student_name, s.student_class, s.has_voted,
		       v.group_id, g.name, v.vote_time
		FROM students s
		LEFT JOIN votes v ON v.student_id = s.student_id
		LEFT JOIN "groups" g ON g.id = v.group_id
		ORDER BY s.student_id, v.vote_time, v.group_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ballots: %w", err)
	}
	defer rows.Close()

	list := []models.StudentBallot{}
	for rows.Next() {
		var (
			b         models.StudentBallot
			groupID   sql.NullString
			groupName sql.NullString
			voteTime  sql.NullTime
		)
		if err := rows.Scan(&b.StudentID, &b.Name, &b.Class, &b.Locked, &groupID, &groupName, &voteTime); err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}

		if n := len(list); n == 0 || list[n-1].StudentID != b.StudentID {
			b.Votes = []models.BallotVote{}
			list = append(list, b)
		}
		if !groupID.Valid {
			continue
		}

		vote := models.BallotVote{GroupID: groupID.String, GroupName: groupName.String}
		if vote.GroupName == "" {
			vote.GroupName = models.UnknownGroupName
		}
		if voteTime.Valid {
			vote.VoteTime = voteTime.Time
		}
		last := &list[len(list)-1]
		last.Votes = append(last.Votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ballots: %w", err)
	}
	return list, nil
}

// VoteCount returns the number of votes for one group.
func (r *Reports) VoteCount(ctx context.Context, groupID string) (int, error) {
	var n int
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE group_id = $1`, groupID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes for group: %w", err)
	}
	return n, nil
}
