// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the classroom voting API.

# Route Registration

NewRouter builds the stores, the voting service and the handlers, and
returns a configured http.ServeMux:

	mux, err := router.NewRouter(conn, dialect, groups, cfg)

# Endpoints

Public:

	GET  /health            - Liveness
	GET  /api/groups        - Group catalog
	POST /api/register      - Register or resume a student
	POST /api/logout        - Clear the session
	POST /api/admin/login   - Admin password login
	POST /api/admin/logout  - Clear the admin session

Student session:

	GET    /api/me              - Current votes and lock state
	POST   /api/vote            - Cast a vote
	DELETE /api/vote/{group}    - Retract a vote
	POST   /api/toggle_vote     - Toggle a vote
	POST   /api/vote/confirm    - Confirm three votes and lock
	POST   /api/feedback        - Leave feedback for a group
	POST   /api/feedback/batch  - Leave feedback for several groups

Admin session:

	GET /api/admin/results    - Tallies and ballots
	GET /api/admin/feedbacks  - Feedback log
	GET /api/admin/export     - xlsx workbook

Guarded routes go through middleware.Requires, so a missing session is
answered with 401 before any handler runs.
*/
package router
