// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielhkuo/classroom-vote/auth"
	"github.com/danielhkuo/classroom-vote/catalog"
	"github.com/danielhkuo/classroom-vote/cliparse"
	"github.com/danielhkuo/classroom-vote/db"
	"github.com/danielhkuo/classroom-vote/handlers"
	"github.com/danielhkuo/classroom-vote/middleware"
	"github.com/danielhkuo/classroom-vote/store"
	"github.com/danielhkuo/classroom-vote/voting"
)

var ErrNoSessionSecret = errors.New("session secret is required")

func NewRouter(conn *sql.DB, dialect db.Dialect, groups *catalog.Catalog, cfg cliparse.Config) (*http.ServeMux, error) {
	if cfg.SessionSecret == "" {
		return nil, ErrNoSessionSecret
	}
	adminHash, err := adminPasswordHash(cfg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	// Stores and the state machine
	identities := store.NewIdentities(conn, dialect)
	ledger := store.NewLedger(conn, dialect)
	feedbacks := store.NewFeedbacks(conn, dialect, groups)
	reports := store.NewReports(conn, dialect)
	service := voting.NewService(identities, ledger, groups)
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies)

	// Initialize handlers
	studentHandler := handlers.NewStudentHandler(service, sessions)
	votingHandler := handlers.NewVotingHandler(service, groups, sessions)
	feedbackHandler := handlers.NewFeedbackHandler(feedbacks)
	adminHandler := handlers.NewAdminHandler(reports, feedbacks, sessions, adminHash)

	student := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.Requires(sessions, middleware.RequireStudent, h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.Requires(sessions, middleware.RequireAdmin, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Public
	mux.HandleFunc("GET /api/groups", middleware.WithLogging(votingHandler.Groups))
	mux.HandleFunc("POST /api/register", middleware.WithLogging(studentHandler.Register))
	mux.HandleFunc("POST /api/logout", middleware.WithLogging(studentHandler.Logout))

	// Student session
	mux.HandleFunc("GET /api/me", student(studentHandler.Me))
	mux.HandleFunc("POST /api/vote", student(votingHandler.Cast))
	mux.HandleFunc("DELETE /api/vote/{group}", student(votingHandler.Retract))
	mux.HandleFunc("POST /api/toggle_vote", student(votingHandler.Toggle))
	mux.HandleFunc("POST /api/vote/confirm", student(votingHandler.Confirm))
	mux.HandleFunc("POST /api/feedback", student(feedbackHandler.Submit))
	mux.HandleFunc("POST /api/feedback/batch", student(feedbackHandler.SubmitBatch))

	// Admin
	mux.HandleFunc("POST /api/admin/login", middleware.WithLogging(adminHandler.Login))
	mux.HandleFunc("POST /api/admin/logout", middleware.WithLogging(adminHandler.Logout))
	mux.HandleFunc("GET /api/admin/results", admin(adminHandler.Results))
	mux.HandleFunc("GET /api/admin/feedbacks", admin(adminHandler.Feedbacks))
	mux.HandleFunc("GET /api/admin/export", admin(adminHandler.Export))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("classroom-vote API v1"))
	})

	return mux, nil
}

// adminPasswordHash returns the configured bcrypt hash, hashing a plain
// password when that is what was configured.
func adminPasswordHash(cfg cliparse.Config) (string, error) {
	if cfg.AdminPasswordHash != "" {
		if !auth.IsPasswordHash(cfg.AdminPasswordHash) {
			return "", fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash")
		}
		return cfg.AdminPasswordHash, nil
	}
	if cfg.AdminPassword == "" {
		return "", fmt.Errorf("admin password is required")
	}
	return auth.HashPassword(cfg.AdminPassword)
}
