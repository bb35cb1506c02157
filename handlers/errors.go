// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/danielhkuo/classroom-vote/middleware"
	"github.com/danielhkuo/classroom-vote/models"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Domain errors and the response each one gets. Order matters where a
// wrapped error matches more than one entry.
var errorTable = []errorMapping{
	{models.ErrInvalidStudentID, http.StatusBadRequest, models.CodeInvalidStudentID},
	{models.ErrMissingGroup, http.StatusBadRequest, models.CodeInvalidRequest},
	{models.ErrWrongCount, http.StatusBadRequest, models.CodeWrongCount},
	{models.ErrInvalidFeedback, http.StatusBadRequest, models.CodeInvalidFeedback},
	{models.ErrUnknownGroup, http.StatusBadRequest, models.CodeUnknownGroup},

	{models.ErrStudentNotFound, http.StatusUnauthorized, models.CodeNotRegistered},

	{models.ErrAlreadyConfirmed, http.StatusConflict, models.CodeAlreadyConfirmed},
	{models.ErrAlreadyLocked, http.StatusConflict, models.CodeAlreadyLocked},
	{models.ErrStudentLocked, http.StatusConflict, models.CodeAlreadyLocked},
	{models.ErrDuplicateVote, http.StatusConflict, models.CodeDuplicateVote},
	{models.ErrVoteLimitExceeded, http.StatusConflict, models.CodeVoteLimitExceeded},
	{models.ErrVoteNotFound, http.StatusConflict, models.CodeVoteNotFound},
}

// classify returns the status, code and client message for err. ok is false
// for storage faults.
func classify(err error) (status int, code, message string, ok bool) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.code, m.err.Error(), true
		}
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, models.CodeInvalidRequest, verrs.Error(), true
	}

	return http.StatusInternalServerError, models.CodeStorage, "Something went wrong, please try again", false
}

// writeDomainError maps err to a response. Storage faults are logged with the
// operation and the ids involved; expected refusals are logged at debug.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, op, studentID, groupID string) {
	status, code, message, ok := classify(err)
	if !ok {
		slog.Error("storage fault",
			"op", op,
			"student_id", studentID,
			"group_id", groupID,
			"request_id", r.Header.Get(middleware.RequestIDHeader),
			"error", err,
		)
	} else {
		slog.Debug("request refused", "op", op, "student_id", studentID, "group_id", groupID, "code", code)
	}
	middleware.CodedErrorResponse(w, status, code, message)
}
