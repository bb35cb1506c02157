// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

// Validation errors
var (
	ErrInvalidStudentID = errors.New("student id must be exactly 9 digits")
	ErrMissingGroup     = errors.New("group id is required")
	ErrWrongCount       = errors.New("exactly 3 distinct groups must be selected")
	ErrInvalidFeedback  = errors.New("invalid feedback entry")
)

// State-conflict errors
var (
	ErrStudentNotFound   = errors.New("student not registered")
	ErrAlreadyLocked     = errors.New("student has already voted")
	ErrStudentLocked     = errors.New("votes are locked after confirmation")
	ErrDuplicateVote     = errors.New("already voted for this group")
	ErrVoteLimitExceeded = errors.New("vote limit reached")
	ErrVoteNotFound      = errors.New("no vote for this group")
	ErrAlreadyConfirmed  = errors.New("votes already confirmed")
	ErrUnknownGroup      = errors.New("unknown group")
)

// Message codes returned to clients
const (
	CodeInvalidRequest    = "invalid_request"
	CodeInvalidStudentID  = "invalid_student_id"
	CodeNotRegistered     = "not_registered"
	CodeAlreadyLocked     = "already_locked"
	CodeDuplicateVote     = "duplicate_vote"
	CodeVoteLimitExceeded = "vote_limit_exceeded"
	CodeVoteNotFound      = "vote_not_found"
	CodeAlreadyConfirmed  = "already_confirmed"
	CodeWrongCount        = "wrong_count"
	CodeUnknownGroup      = "unknown_group"
	CodeInvalidFeedback   = "invalid_feedback"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeStorage           = "storage_error"
)
