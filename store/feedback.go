// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/classroom-vote/db"
	"github.com/danielhkuo/classroom-vote/models"
)

// GroupChecker answers catalog membership.
type GroupChecker interface {
	Exists(groupID string) bool
}

// Feedbacks is the append-only feedback log. Feedback is independent of the
// voting state; a student may leave any number of entries per group.
type Feedbacks struct {
	base
	groups GroupChecker
}

func NewFeedbacks(conn *sql.DB, dialect db.Dialect, groups GroupChecker) *Feedbacks {
	return &Feedbacks{base: newBase(conn, dialect), groups: groups}
}

// Append stores one entry for the student.
func (f *Feedbacks) Append(ctx context.Context, studentID string, entry models.FeedbackEntry) (models.Feedback, error) {
	if err := f.check(entry); err != nil {
		return models.Feedback{}, err
	}

	var stored models.Feedback
	err := db.WithTx(ctx, f.conn, nil, func(tx *sql.Tx) error {
		var err error
		stored, err = f.insert(ctx, tx, studentID, entry)
		return err
	})
	return stored, err
}

// AppendBatch stores every valid entry in one transaction. Entries with an
// unknown group or invalid fields are skipped and logged; an empty batch or
// one with nothing valid still succeeds.
func (f *Feedbacks) AppendBatch(ctx context.Context, studentID string, entries []models.FeedbackEntry) (models.BatchResult, error) {
	result := models.BatchResult{Skipped: []string{}}

	valid := make([]models.FeedbackEntry, 0, len(entries))
	for i, entry := range entries {
		if err := f.check(entry); err != nil {
			slog.Warn("skipping feedback entry",
				"student_id", studentID, "group_id", entry.GroupID, "index", i, "error", err)
			result.Skipped = append(result.Skipped, entry.GroupID)
			continue
		}
		valid = append(valid, entry)
	}

	if len(valid) == 0 {
		return result, nil
	}

	err := db.WithTx(ctx, f.conn, nil, func(tx *sql.Tx) error {
		for _, entry := range valid {
			if _, err := f.insert(ctx, tx, studentID, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.BatchResult{}, err
	}

	result.Accepted = len(valid)
	return result, nil
}

// List returns all feedback joined with student and group names, newest first.
func (f *Feedbacks) List(ctx context.Context) ([]models.FeedbackView, error) {
	rows, err := f.conn.QueryContext(ctx, `
		SELECT f.id, f.student_id, COALESCE(s.student_name, ''),
		       f.group_id, COALESCE(g.name, ''),
		       f.feedback, f.feedback_date, f.feedback_time, f.created_at
		FROM feedbacks f
		LEFT JOIN students s ON s.student_id = f.student_id
		LEFT JOIN "groups" g ON g.id = f.group_id
		ORDER BY f.created_at DESC, f.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	list := []models.FeedbackView{}
	for rows.Next() {
		var v models.FeedbackView
		if err := rows.Scan(&v.ID, &v.StudentID, &v.StudentName, &v.GroupID, &v.GroupName,
			&v.Feedback, &v.FeedbackDate, &v.FeedbackTime, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		if v.GroupName == "" {
			slog.Warn("feedback references unknown group", "feedback_id", v.ID, "group_id", v.GroupID)
			v.GroupName = models.UnknownGroupName
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feedback: %w", err)
	}
	return list, nil
}

func (f *Feedbacks) check(entry models.FeedbackEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if !f.groups.Exists(entry.GroupID) {
		return models.ErrUnknownGroup
	}
	return nil
}

func (f *Feedbacks) insert(ctx context.Context, tx *sql.Tx, studentID string, entry models.FeedbackEntry) (models.Feedback, error) {
	fb := models.Feedback{
		StudentID:    studentID,
		GroupID:      entry.GroupID,
		Feedback:     strings.TrimSpace(entry.Feedback),
		FeedbackDate: entry.FeedbackDate,
		FeedbackTime: entry.FeedbackTime,
		CreatedAt:    f.now(),
	}

	err := tx.QueryRowContext(ctx, `
		INSERT INTO feedbacks (student_id, group_id, feedback, feedback_date, feedback_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, fb.StudentID, fb.GroupID, fb.Feedback, fb.FeedbackDate, fb.FeedbackTime, fb.CreatedAt).Scan(&fb.ID)
	if err != nil {
		return models.Feedback{}, fmt.Errorf("failed to insert feedback: %w", err)
	}
	return fb, nil
}
