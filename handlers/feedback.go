// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/classroom-vote/middleware"
	"github.com/danielhkuo/classroom-vote/models"
)

type FeedbackStore interface {
	Append(ctx context.Context, studentID string, entry models.FeedbackEntry) (models.Feedback, error)
	AppendBatch(ctx context.Context, studentID string, entries []models.FeedbackEntry) (models.BatchResult, error)
	List(ctx context.Context) ([]models.FeedbackView, error)
}

type FeedbackHandler struct {
	feedbacks FeedbackStore
}

func NewFeedbackHandler(feedbacks FeedbackStore) *FeedbackHandler {
	return &FeedbackHandler{feedbacks: feedbacks}
}

// Submit handles POST /api/feedback
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())

	var entry models.FeedbackEntry
	if isJSON(r) {
		if err := decodeJSON(r, &entry); err != nil {
			middleware.CodedErrorResponse(w, http.StatusBadRequest, models.CodeInvalidRequest, "Invalid JSON")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			middleware.CodedErrorResponse(w, http.StatusBadRequest, models.CodeInvalidRequest, "Invalid form")
			return
		}
		entry = models.FeedbackEntry{
			GroupID:      r.PostFormValue("groupId"),
			Feedback:     r.PostFormValue("feedback"),
			FeedbackDate: r.PostFormValue("feedbackDate"),
			FeedbackTime: r.PostFormValue("feedbackTime"),
		}
	}

	stored, err := h.feedbacks.Append(r.Context(), claims.StudentID, entry)
	if err != nil {
		writeDomainError(w, r, err, "feedback", claims.StudentID, entry.GroupID)
		return
	}

	slog.Info("feedback saved", "student_id", claims.StudentID, "group_id", stored.GroupID, "feedback_id", stored.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.FeedbackResponse{
		Success:  true,
		Message:  "Feedback saved",
		Accepted: 1,
	})
}

// SubmitBatch handles POST /api/feedback/batch. The body is a JSON array of
// entries, or a form post whose data field holds that array.
func (h *FeedbackHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())

	var entries []models.FeedbackEntry
	if isJSON(r) {
		if err := decodeJSON(r, &entries); err != nil {
			middleware.CodedErrorResponse(w, http.StatusBadRequest, models.CodeInvalidRequest, "Invalid JSON")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			middleware.CodedErrorResponse(w, http.StatusBadRequest, models.CodeInvalidRequest, "Invalid form")
			return
		}
		data := r.PostFormValue("data")
		if data == "" {
			middleware.CodedErrorResponse(w, http.StatusBadRequest, models.CodeInvalidRequest, "data is required")
			return
		}
		if err := json.Unmarshal([]byte(data), &entries); err != nil {
			middleware.CodedErrorResponse(w, http.StatusBadRequest, models.CodeInvalidRequest, "data must be a JSON array")
			return
		}
	}

	result, err := h.feedbacks.AppendBatch(r.Context(), claims.StudentID, entries)
	if err != nil {
		writeDomainError(w, r, err, "feedback_batch", claims.StudentID, "")
		return
	}

	slog.Info("feedback batch saved", "student_id", claims.StudentID,
		"accepted", result.Accepted, "skipped", len(result.Skipped))

	middleware.JSONResponse(w, http.StatusOK, models.FeedbackResponse{
		Success:  true,
		Message:  fmt.Sprintf("Saved %d feedback entries", result.Accepted),
		Accepted: result.Accepted,
		Skipped:  result.Skipped,
	})
}
