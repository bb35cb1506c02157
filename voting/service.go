// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/classroom-vote/models"
)

type Identities interface {
	Register(ctx context.Context, student models.Student) (models.Registration, error)
	Get(ctx context.Context, studentID string) (models.Student, error)
}

type Ledger interface {
	VotesFor(ctx context.Context, studentID string) ([]models.Vote, error)
	Cast(ctx context.Context, studentID, groupID string) (int, error)
	Retract(ctx context.Context, studentID, groupID string) (int, error)
	Toggle(ctx context.Context, studentID, groupID string) (models.Toggle, error)
	Confirm(ctx context.Context, studentID string, groupIDs []string) ([]models.Vote, error)
}

type Catalog interface {
	Exists(groupID string) bool
}

// Service applies state transitions for one student at a time:
//
//	UNREGISTERED --register--> REGISTERED(0)
//	REGISTERED(n<3) --cast/toggle-on--> REGISTERED(n+1)
//	REGISTERED(n>0) --retract/toggle-off--> REGISTERED(n-1)
//	REGISTERED --confirm--> LOCKED
//
// The ledger is the only authority on vote counts. Every outcome is re-read
// from it after the mutation commits.
type Service struct {
	identities Identities
	ledger     Ledger
	catalog    Catalog
}

func NewService(identities Identities, ledger Ledger, catalog Catalog) *Service {
	return &Service{identities: identities, ledger: ledger, catalog: catalog}
}

// Register creates or resumes the student.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (models.Registration, error) {
	reg, err := s.identities.Register(ctx, models.Student{
		StudentID: strings.TrimSpace(req.StudentID),
		Name:      req.StudentName,
		Class:     req.StudentClass,
	})
	if err != nil {
		return models.Registration{}, fmt.Errorf("register: %w", err)
	}
	return reg, nil
}

// Status returns the student's current state.
func (s *Service) Status(ctx context.Context, studentID string) (models.Outcome, error) {
	return s.refresh(ctx, studentID, false)
}

// Cast adds a vote for a catalog group.
func (s *Service) Cast(ctx context.Context, studentID, groupID string) (models.Outcome, error) {
	if groupID == "" {
		return models.Outcome{}, models.ErrMissingGroup
	}
	if !s.catalog.Exists(groupID) {
		return models.Outcome{}, models.ErrUnknownGroup
	}
	if _, err := s.ledger.Cast(ctx, studentID, groupID); err != nil {
		return models.Outcome{}, fmt.Errorf("cast: %w", err)
	}
	return s.refresh(ctx, studentID, true)
}

// Retract removes a staged vote.
func (s *Service) Retract(ctx context.Context, studentID, groupID string) (models.Outcome, error) {
	if groupID == "" {
		return models.Outcome{}, models.ErrMissingGroup
	}
	if _, err := s.ledger.Retract(ctx, studentID, groupID); err != nil {
		return models.Outcome{}, fmt.Errorf("retract: %w", err)
	}
	return s.refresh(ctx, studentID, false)
}

// Toggle flips the vote for a group. A group removed from the catalog can
// still be toggled off but never on.
func (s *Service) Toggle(ctx context.Context, studentID, groupID string) (models.Outcome, error) {
	if groupID == "" {
		return models.Outcome{}, models.ErrMissingGroup
	}

	if !s.catalog.Exists(groupID) {
		_, err := s.ledger.Retract(ctx, studentID, groupID)
		if errors.Is(err, models.ErrVoteNotFound) {
			return models.Outcome{}, models.ErrUnknownGroup
		}
		if err != nil {
			return models.Outcome{}, fmt.Errorf("toggle: %w", err)
		}
		return s.refresh(ctx, studentID, false)
	}

	t, err := s.ledger.Toggle(ctx, studentID, groupID)
	if err != nil {
		return models.Outcome{}, fmt.Errorf("toggle: %w", err)
	}
	return s.refresh(ctx, studentID, t.Voting)
}

// Confirm finalizes the selection, or the staged votes when groupIDs is empty.
func (s *Service) Confirm(ctx context.Context, studentID string, groupIDs []string) (models.Outcome, error) {
	for _, id := range groupIDs {
		if id != "" && !s.catalog.Exists(id) {
			return models.Outcome{}, models.ErrUnknownGroup
		}
	}
	if _, err := s.ledger.Confirm(ctx, studentID, groupIDs); err != nil {
		return models.Outcome{}, fmt.Errorf("confirm: %w", err)
	}
	return s.refresh(ctx, studentID, true)
}

func (s *Service) refresh(ctx context.Context, studentID string, voted bool) (models.Outcome, error) {
	student, err := s.identities.Get(ctx, studentID)
	if err != nil {
		return models.Outcome{}, fmt.Errorf("refresh: %w", err)
	}
	votes, err := s.ledger.VotesFor(ctx, studentID)
	if err != nil {
		return models.Outcome{}, fmt.Errorf("refresh: %w", err)
	}

	return models.Outcome{
		StudentID: studentID,
		Voted:     voted,
		Votes:     GroupIDs(votes),
		VoteCount: len(votes),
		Locked:    student.Locked,
	}, nil
}

// GroupIDs lists the group ids of votes in order.
func GroupIDs(votes []models.Vote) []string {
	ids := make([]string, 0, len(votes))
	for _, v := range votes {
		ids = append(ids, v.GroupID)
	}
	return ids
}
