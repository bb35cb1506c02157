// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/classroom-vote/db"
	"github.com/danielhkuo/classroom-vote/models"
)

// Identities is the durable record of registered students.
type Identities struct {
	base
}

func NewIdentities(conn *sql.DB, dialect db.Dialect) *Identities {
	return &Identities{base: newBase(conn, dialect)}
}

// Register creates the student on first use. A student that exists but has
// not confirmed is resumed with its current votes; name and class keep their
// original values. A confirmed student gets ErrAlreadyLocked.
func (s *Identities) Register(ctx context.Context, student models.Student) (models.Registration, error) {
	if err := models.ValidateStudentID(student.StudentID); err != nil {
		return models.Registration{}, err
	}

	var reg models.Registration
	err := db.WithTx(ctx, s.conn, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO students (student_id, student_name, student_class, has_voted, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (student_id) DO NOTHING
		`, student.StudentID, strings.TrimSpace(student.Name), strings.TrimSpace(student.Class), false, s.now())
		if err != nil {
			return fmt.Errorf("failed to insert student: %w", err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}

		if _, err := s.lockStudent(ctx, tx, student.StudentID); err != nil {
			return err
		}

		current, err := getStudent(ctx, tx, student.StudentID)
		if err != nil {
			return err
		}
		if current.Locked {
			return models.ErrAlreadyLocked
		}

		votes, err := listVotes(ctx, tx, student.StudentID)
		if err != nil {
			return err
		}

		reg = models.Registration{
			Status:  models.RegistrationResumed,
			Student: current,
			Votes:   votes,
		}
		if inserted == 1 {
			reg.Status = models.RegistrationCreated
		}
		return nil
	})
	if err != nil {
		return models.Registration{}, err
	}

	return reg, nil
}

// Lock marks the student as having completed voting. Locking twice is a no-op.
func (s *Identities) Lock(ctx context.Context, studentID string) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE students SET has_voted = $1 WHERE student_id = $2`, true, studentID)
	if err != nil {
		return fmt.Errorf("failed to lock student: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrStudentNotFound
	}
	return nil
}

// Get returns the student or ErrStudentNotFound.
func (s *Identities) Get(ctx context.Context, studentID string) (models.Student, error) {
	return getStudent(ctx, s.conn, studentID)
}

func getStudent(ctx context.Context, q querier, studentID string) (models.Student, error) {
	var st models.Student
	err := q.QueryRowContext(ctx, `
		SELECT student_id, student_name, student_class, has_voted, created_at
		FROM students
		WHERE student_id = $1
	`, studentID).Scan(&st.StudentID, &st.Name, &st.Class, &st.Locked, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Student{}, models.ErrStudentNotFound
	}
	if err != nil {
		return models.Student{}, fmt.Errorf("failed to query student: %w", err)
	}
	return st, nil
}
