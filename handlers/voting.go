// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/classroom-vote/auth"
	"github.com/danielhkuo/classroom-vote/middleware"
	"github.com/danielhkuo/classroom-vote/models"
	"github.com/danielhkuo/classroom-vote/voting"
)

// GroupLister returns the configured groups in display order.
type GroupLister interface {
	Groups() []models.Group
}

type VotingHandler struct {
	service  *voting.Service
	groups   GroupLister
	sessions *auth.Sessions
}

func NewVotingHandler(service *voting.Service, groups GroupLister, sessions *auth.Sessions) *VotingHandler {
	return &VotingHandler{service: service, groups: groups, sessions: sessions}
}

// Groups handles GET /api/groups
func (h *VotingHandler) Groups(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.GroupsResponse{Groups: h.groups.Groups()})
}

// Cast handles POST /api/vote
func (h *VotingHandler) Cast(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())

	req, ok := parseVoteRequest(w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, r, err, "cast", claims.StudentID, req.GroupID)
		return
	}

	outcome, err := h.service.Cast(r.Context(), claims.StudentID, req.GroupID)
	if err != nil {
		writeDomainError(w, r, err, "cast", claims.StudentID, req.GroupID)
		return
	}

	slog.Info("vote cast", "student_id", claims.StudentID, "group_id", req.GroupID, "vote_count", outcome.VoteCount)

	refreshSession(h.sessions, w, claims, outcome)
	middleware.JSONResponse(w, http.StatusOK, voteResponse(outcome, "Vote recorded"))
}

// Retract handles DELETE /api/vote/{group}
func (h *VotingHandler) Retract(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	groupID := strings.TrimSpace(r.PathValue("group"))

	outcome, err := h.service.Retract(r.Context(), claims.StudentID, groupID)
	if err != nil {
		writeDomainError(w, r, err, "retract", claims.StudentID, groupID)
		return
	}

	slog.Info("vote retracted", "student_id", claims.StudentID, "group_id", groupID, "vote_count", outcome.VoteCount)

	refreshSession(h.sessions, w, claims, outcome)
	middleware.JSONResponse(w, http.StatusOK, voteResponse(outcome, "Vote removed"))
}

// Toggle handles POST /api/toggle_vote
func (h *VotingHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())

	req, ok := parseVoteRequest(w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, r, err, "toggle", claims.StudentID, req.GroupID)
		return
	}

	outcome, err := h.service.Toggle(r.Context(), claims.StudentID, req.GroupID)
	if err != nil {
		writeDomainError(w, r, err, "toggle", claims.StudentID, req.GroupID)
		return
	}

	message := "Vote removed"
	if outcome.Voted {
		message = "Vote added"
	}
	slog.Info("vote toggled", "student_id", claims.StudentID, "group_id", req.GroupID, "voted", outcome.Voted)

	refreshSession(h.sessions, w, claims, outcome)
	middleware.JSONResponse(w, http.StatusOK, voteResponse(outcome, message))
}

// Confirm handles POST /api/vote/confirm. With no selected_votes the staged
// votes are confirmed as they are.
func (h *VotingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())

	var req models.ConfirmRequest
	if isJSON(r) {
		if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
			middleware.CodedErrorResponse(w, http.StatusBadRequest, models.CodeInvalidRequest, "Invalid JSON")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			middleware.CodedErrorResponse(w, http.StatusBadRequest, models.CodeInvalidRequest, "Invalid form")
			return
		}
		req.SelectedVotes = formValues(r, "selected_votes")
	}

	outcome, err := h.service.Confirm(r.Context(), claims.StudentID, req.SelectedVotes)
	if err != nil {
		writeDomainError(w, r, err, "confirm", claims.StudentID, strings.Join(req.SelectedVotes, ","))
		return
	}

	slog.Info("votes confirmed", "student_id", claims.StudentID, "votes", outcome.Votes)

	refreshSession(h.sessions, w, claims, outcome)
	middleware.JSONResponse(w, http.StatusOK, voteResponse(outcome, "Votes confirmed"))
}

// parseVoteRequest reads group_id from JSON or a form post. It writes the
// error response itself and reports whether the caller should continue.
func parseVoteRequest(w http.ResponseWriter, r *http.Request) (models.VoteRequest, bool) {
	var req models.VoteRequest
	if isJSON(r) {
		if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
			middleware.CodedErrorResponse(w, http.StatusBadRequest, models.CodeInvalidRequest, "Invalid JSON")
			return req, false
		}
	} else {
		if err := r.ParseForm(); err != nil {
			middleware.CodedErrorResponse(w, http.StatusBadRequest, models.CodeInvalidRequest, "Invalid form")
			return req, false
		}
		req.GroupID = r.PostFormValue("group_id")
	}
	req.GroupID = strings.TrimSpace(req.GroupID)
	return req, true
}
