// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/classroom-vote/auth"
	"github.com/danielhkuo/classroom-vote/export"
	"github.com/danielhkuo/classroom-vote/middleware"
	"github.com/danielhkuo/classroom-vote/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportStore interface {
	Snapshot(ctx context.Context) (models.Report, error)
}

type AdminHandler struct {
	reports      ReportStore
	feedbacks    FeedbackStore
	sessions     *auth.Sessions
	passwordHash string
}

func NewAdminHandler(reports ReportStore, feedbacks FeedbackStore, sessions *auth.Sessions, passwordHash string) *AdminHandler {
	return &AdminHandler{
		reports:      reports,
		feedbacks:    feedbacks,
		sessions:     sessions,
		passwordHash: passwordHash,
	}
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
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
		req.Password = r.PostFormValue("password")
	}

	if err := req.Validate(); err != nil {
		writeDomainError(w, r, err, "admin_login", "", "")
		return
	}

	if err := auth.CheckPassword(h.passwordHash, req.Password); err != nil {
		slog.Warn("admin login failed", "remote", middleware.GetClientIP(r))
		middleware.CodedErrorResponse(w, http.StatusUnauthorized, models.CodeUnauthorized, "Invalid password")
		return
	}

	if err := h.sessions.Issue(w, auth.Claims{Admin: true}); err != nil {
		slog.Error("failed to issue admin session", "error", err)
		middleware.CodedErrorResponse(w, http.StatusInternalServerError, models.CodeStorage, "Failed to start session")
		return
	}

	slog.Info("admin logged in", "remote", middleware.GetClientIP(r))
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Success: true, Message: "Logged in"})
}

// Logout handles POST /api/admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Success: true, Message: "Logged out"})
}

// Results handles GET /api/admin/results
func (h *AdminHandler) Results(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Snapshot(r.Context())
	if err != nil {
		writeDomainError(w, r, err, "results", "", "")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, report)
}

// Feedbacks handles GET /api/admin/feedbacks
func (h *AdminHandler) Feedbacks(w http.ResponseWriter, r *http.Request) {
	list, err := h.feedbacks.List(r.Context())
	if err != nil {
		slog.Error("failed to list feedback", "error", err)
		middleware.JSONResponse(w, http.StatusInternalServerError, models.FeedbackListResponse{
			Success:   false,
			Message:   "Failed to load feedback",
			Feedbacks: []models.FeedbackView{},
		})
		return
	}

	for i := range list {
		list[i].CreatedAgo = humanize.Time(list[i].CreatedAt)
	}

	middleware.JSONResponse(w, http.StatusOK, models.FeedbackListResponse{
		Success:   true,
		Message:   fmt.Sprintf("Loaded %d feedback entries", len(list)),
		Feedbacks: list,
	})
}

// Export handles GET /api/admin/export
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Snapshot(r.Context())
	if err != nil {
		writeDomainError(w, r, err, "export", "", "")
		return
	}
	list, err := h.feedbacks.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err, "export", "", "")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, report, list); err != nil {
		slog.Error("failed to render export", "error", err)
		middleware.CodedErrorResponse(w, http.StatusInternalServerError, models.CodeStorage, "Failed to build export")
		return
	}

	filename := fmt.Sprintf("classvote-%s.xlsx", report.TakenAt.Format("20060102-150405"))
	if report.TakenAt.IsZero() {
		filename = fmt.Sprintf("classvote-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to send export", "error", err)
	}
}
