// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /api/groups", middleware.WithLogging(handler))

Assigns or propagates X-Request-ID and logs method, path, client IP,
status and duration_ms when the request completes.

# Guards

Routes that need a session are wrapped with Requires and a Guard:

	middleware.Requires(sessions, middleware.RequireStudent, h.Toggle)
	middleware.Requires(sessions, middleware.RequireAdmin, h.Results)

A guard is a predicate over the session claims. Guards compose with All.
The handler reads the verified claims with ClaimsFrom(r.Context()).

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.CodedErrorResponse(w, http.StatusConflict, models.CodeDuplicateVote, "message")

# CORS

	server := http.Server{Handler: middleware.CORS(mux)}
*/
package middleware
