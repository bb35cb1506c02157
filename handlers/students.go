// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/classroom-vote/auth"
	"github.com/danielhkuo/classroom-vote/middleware"
	"github.com/danielhkuo/classroom-vote/models"
	"github.com/danielhkuo/classroom-vote/voting"
)

type StudentHandler struct {
	service  *voting.Service
	sessions *auth.Sessions
}

func NewStudentHandler(service *voting.Service, sessions *auth.Sessions) *StudentHandler {
	return &StudentHandler{service: service, sessions: sessions}
}

// Register handles POST /api/register
func (h *StudentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if isJSON(r) {
		if err := decodeJSON(r, &req); err != nil {
			middleware.CodedErrorResponse(w, http.StatusBadRequest, models.CodeInvalidRequest, "Invalid JSON")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			middleware.CodedErrorResponse(w, http.StatusBadRequest, models.CodeInvalidRequest, "Invalid form")
			return
		}
		req.StudentID = r.PostFormValue("student_id")
		req.StudentName = r.PostFormValue("student_name")
		req.StudentClass = r.PostFormValue("student_class")
	}
	req.StudentID = strings.TrimSpace(req.StudentID)

	if err := req.Validate(); err != nil {
		writeDomainError(w, r, err, "register", req.StudentID, "")
		return
	}

	reg, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err, "register", req.StudentID, "")
		return
	}

	votes := voting.GroupIDs(reg.Votes)
	if err := h.sessions.Issue(w, auth.Claims{StudentID: reg.Student.StudentID, Votes: votes}); err != nil {
		slog.Error("failed to issue session", "student_id", reg.Student.StudentID, "error", err)
		middleware.CodedErrorResponse(w, http.StatusInternalServerError, models.CodeStorage, "Failed to start session")
		return
	}

	status := http.StatusOK
	if reg.Status == models.RegistrationCreated {
		status = http.StatusCreated
	}

	slog.Info("student registered", "student_id", reg.Student.StudentID, "status", reg.Status, "vote_count", len(votes))

	middleware.JSONResponse(w, status, models.RegisterResponse{
		Success:   true,
		Status:    reg.Status,
		StudentID: reg.Student.StudentID,
		Votes:     votes,
		VoteCount: len(votes),
	})
}

// Me handles GET /api/me
func (h *StudentHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())

	outcome, err := h.service.Status(r.Context(), claims.StudentID)
	if err != nil {
		writeDomainError(w, r, err, "status", claims.StudentID, "")
		return
	}

	refreshSession(h.sessions, w, claims, outcome)
	middleware.JSONResponse(w, http.StatusOK, voteResponse(outcome, ""))
}

// Logout handles POST /api/logout
func (h *StudentHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Success: true, Message: "Logged out"})
}

// refreshSession stores the latest votes in the session cookie. A failure
// only leaves a stale display cache, so it is logged and ignored.
func refreshSession(sessions *auth.Sessions, w http.ResponseWriter, claims auth.Claims, o models.Outcome) {
	claims.Votes = o.Votes
	if err := sessions.Issue(w, claims); err != nil {
		slog.Warn("failed to refresh session", "student_id", claims.StudentID, "error", err)
	}
}

func voteResponse(o models.Outcome, message string) models.VoteResponse {
	return models.VoteResponse{
		Success:   true,
		Message:   message,
		Voted:     o.Voted,
		VoteCount: o.VoteCount,
		Votes:     o.Votes,
		Locked:    o.Locked,
	}
}
