// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the classroom voting API.

# Handler Types

  - StudentHandler: registration, status and logout
  - VotingHandler: group listing and the vote operations
  - FeedbackHandler: single and batch feedback submission
  - AdminHandler: admin login, results, the feedback log and the xlsx export

Handlers are created via constructor functions that take their collaborators:

	votingHandler := handlers.NewVotingHandler(service, catalog, sessions)

# Student Flow

	POST /api/register        → Register (sets the session cookie)
	POST /api/toggle_vote     → Toggle (stage or unstage a group)
	POST /api/vote/confirm    → Confirm (locks the student)
	POST /api/feedback/batch  → SubmitBatch

Requests may be JSON or form posts. Every vote response is re-read from the
ledger and has the shape:

	{"success": true, "message": "...", "voted": true, "vote_count": 2, "votes": ["G1", "G3"], "locked": false}

The votes listed in the session cookie are a display cache. Handlers refresh
it after each mutation but never decide anything from it.

# Errors

Domain errors are mapped in one place (errors.go). Invalid input is 400,
a refused state transition is 409 and an unknown session student is 401.
Storage faults are 500 with a generic message and are logged with the
operation and ids involved:

	{"success": false, "error": "Conflict", "code": "vote_limit_exceeded", "message": "vote limit reached"}
*/
package handlers
