// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Voting rules
const (
	StudentIDLength = 9
	MaxVotes        = 3
)

// Registration outcomes
const (
	RegistrationCreated = "created"
	RegistrationResumed = "resumed"
)

// Group name used when a vote or feedback points at a group missing from storage
const UnknownGroupName = "unknown group"

// Domain types

type Student struct {
	StudentID string    `json:"student_id"`
	Name      string    `json:"student_name"`
	Class     string    `json:"student_class"`
	Locked    bool      `json:"locked"`
	CreatedAt time.Time `json:"created_at"`
}

type Group struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Teacher     string `json:"teacher" yaml:"teacher"`
	LabNumber   string `json:"lab_number" yaml:"lab_number"`
	Description string `json:"description,omitempty" yaml:"description"`
}

type Vote struct {
	StudentID string    `json:"student_id"`
	GroupID   string    `json:"group_id"`
	VoteTime  time.Time `json:"vote_time"`
}

type Feedback struct {
	ID           int64     `json:"id"`
	StudentID    string    `json:"student_id"`
	GroupID      string    `json:"group_id"`
	Feedback     string    `json:"feedback"`
	FeedbackDate string    `json:"feedback_date"`
	FeedbackTime string    `json:"feedback_time"`
	CreatedAt    time.Time `json:"created_at"`
}

// Registration is the result of registering (or re-entering) a student ID.
type Registration struct {
	Status  string  `json:"status"`
	Student Student `json:"student"`
	Votes   []Vote  `json:"votes"`
}

// Toggle reports the membership and vote count after a toggle.
type Toggle struct {
	Voting bool `json:"voting"`
	Total  int  `json:"total"`
}

// BatchResult summarizes a batch feedback submission.
type BatchResult struct {
	Accepted int      `json:"accepted"`
	Skipped  []string `json:"skipped"`
}

// Outcome is the state of a student after a voting operation, refreshed from the ledger.
type Outcome struct {
	StudentID string   `json:"student_id"`
	Voted     bool     `json:"voted"`
	Votes     []string `json:"votes"`
	VoteCount int      `json:"vote_count"`
	Locked    bool     `json:"locked"`
}

// Reporting types

type GroupTally struct {
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	Teacher   string `json:"teacher"`
	LabNumber string `json:"lab_number"`
	Votes     int    `json:"votes"`
}

type BallotVote struct {
	GroupID   string    `json:"group_id"`
	GroupName string    `json:"group_name"`
	VoteTime  time.Time `json:"vote_time"`
}

type StudentBallot struct {
	StudentID string       `json:"student_id"`
	Name      string       `json:"student_name"`
	Class     string       `json:"student_class"`
	Locked    bool         `json:"locked"`
	Votes     []BallotVote `json:"votes"`
}

type Report struct {
	TakenAt time.Time       `json:"taken_at"`
	Tallies []GroupTally    `json:"tallies"`
	Ballots []StudentBallot `json:"ballots"`
}

// FeedbackView is a feedback row joined with student and group display data.
// Field names follow the admin feedback table of the web client.
type FeedbackView struct {
	ID           int64     `json:"id"`
	StudentID    string    `json:"studentId"`
	StudentName  string    `json:"studentName"`
	GroupID      string    `json:"groupId"`
	GroupName    string    `json:"groupName"`
	Feedback     string    `json:"feedback"`
	FeedbackDate string    `json:"feedbackDate"`
	FeedbackTime string    `json:"feedbackTime"`
	CreatedAt    time.Time `json:"createdAt"`
	CreatedAgo   string    `json:"createdAgo,omitempty"`
}

// Request types

type RegisterRequest struct {
	StudentID    string `json:"student_id"`
	StudentName  string `json:"student_name"`
	StudentClass string `json:"student_class"`
}

type VoteRequest struct {
	GroupID string `json:"group_id"`
}

// An empty SelectedVotes confirms the staged votes.
type ConfirmRequest struct {
	SelectedVotes []string `json:"selected_votes"`
}

// FeedbackEntry uses the camelCase keys sent by the feedback page.
type FeedbackEntry struct {
	GroupID      string `json:"groupId"`
	Feedback     string `json:"feedback"`
	FeedbackDate string `json:"feedbackDate"`
	FeedbackTime string `json:"feedbackTime"`
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

// Response types

type RegisterResponse struct {
	Success   bool     `json:"success"`
	Status    string   `json:"status"`
	StudentID string   `json:"student_id"`
	Votes     []string `json:"votes"`
	VoteCount int      `json:"vote_count"`
}

type VoteResponse struct {
	Success   bool     `json:"success"`
	Code      string   `json:"code,omitempty"`
	Message   string   `json:"message,omitempty"`
	Voted     bool     `json:"voted"`
	VoteCount int      `json:"vote_count"`
	Votes     []string `json:"votes"`
	Locked    bool     `json:"locked"`
}

type FeedbackResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message,omitempty"`
	Accepted int      `json:"accepted"`
	Skipped  []string `json:"skipped,omitempty"`
}

type FeedbackListResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message,omitempty"`
	Feedbacks []FeedbackView `json:"feedbacks"`
}

// StatusResponse acknowledges operations that return no data
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type GroupsResponse struct {
	Groups []Group `json:"groups"`
}

// Error response

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
