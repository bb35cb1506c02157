// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/danielhkuo/classroom-vote/auth"
	"github.com/danielhkuo/classroom-vote/catalog"
	"github.com/danielhkuo/classroom-vote/cliparse"
	"github.com/danielhkuo/classroom-vote/db"
	"github.com/danielhkuo/classroom-vote/middleware"
	"github.com/danielhkuo/classroom-vote/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		slog.Error("invalid database type", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Connect and verify
	dbConn, err := db.Open(ctx, dialect, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn, dialect); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", dialect)

	// Load the group catalog and mirror it into the database
	groups, err := catalog.LoadFile(cfg.GroupsFile)
	if err != nil {
		slog.Error("failed to load groups", "file", cfg.GroupsFile, "error", err)
		os.Exit(1)
	}
	if err := groups.Sync(ctx, dbConn); err != nil {
		slog.Error("failed to sync groups", "error", err)
		os.Exit(1)
	}
	slog.Info("Groups loaded", "file", cfg.GroupsFile, "count", len(groups.Groups()))

	if cfg.SessionSecret == "" {
		cfg.SessionSecret, err = auth.GenerateID(32)
		if err != nil {
			slog.Error("failed to generate session secret", "error", err)
			os.Exit(1)
		}
		slog.Warn("SESSION_SECRET not set; sessions will not survive a restart")
	}

	// Create router
	mux, err := router.NewRouter(dbConn, dialect, groups, cfg)
	if err != nil {
		slog.Error("router setup failed", "error", err)
		os.Exit(1)
	}

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal, then let in-flight requests finish
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
