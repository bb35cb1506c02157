// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Student: registered voter (student_id, name, class, locked)
  - Group: votable group loaded from the groups file
  - Vote: one (student, group) record with its vote time
  - Feedback: free-text feedback left by a student for a group

# Results

  - Registration: created or resumed, with the current votes
  - Toggle: membership and count after a toggle
  - Outcome: student state after any voting operation
  - Report: tallies and per-student ballots read in one snapshot
  - FeedbackView: feedback joined with display names

# Request Types

  - RegisterRequest: student_id, student_name, student_class
  - VoteRequest: group_id
  - ConfirmRequest: selected_votes (empty confirms the staged votes)
  - FeedbackEntry: groupId, feedback, feedbackDate, feedbackTime
  - AdminLoginRequest: password

Requests implement Validate() using ozzo-validation.

# Errors

errors.go holds the sentinel errors returned by the store and voting
packages, and the message codes the handlers put in JSON responses:

	if errors.Is(err, models.ErrVoteLimitExceeded) { ... }

# Constants

	StudentIDLength = 9
	MaxVotes        = 3
*/
package models
