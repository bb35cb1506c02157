// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielhkuo/classroom-vote/auth"
	"github.com/danielhkuo/classroom-vote/models"
)

var (
	ErrNotStudent = errors.New("student session required")
	ErrNotAdmin   = errors.New("admin session required")
)

// Guard decides whether a session may use a route. It returns nil to allow.
type Guard func(claims auth.Claims) error

// RequireStudent allows sessions that carry a student ID.
func RequireStudent(claims auth.Claims) error {
	if claims.StudentID == "" {
		return ErrNotStudent
	}
	return nil
}

// RequireAdmin allows admin sessions.
func RequireAdmin(claims auth.Claims) error {
	if !claims.Admin {
		return ErrNotAdmin
	}
	return nil
}

// All combines guards; every one must allow.
func All(guards ...Guard) Guard {
	return func(claims auth.Claims) error {
		for _, g := range guards {
			if err := g(claims); err != nil {
				return err
			}
		}
		return nil
	}
}

type claimsKey struct{}

// Requires reads the session, applies guard and passes the claims on in the
// request context. A missing or invalid session is 401; a session the guard
// refuses is 403.
func Requires(sessions *auth.Sessions, guard Guard, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := sessions.Read(r)
		if err != nil {
			CodedErrorResponse(w, http.StatusUnauthorized, models.CodeUnauthorized, "Please register your student ID first")
			return
		}
		if err := guard(claims); err != nil {
			status, code := http.StatusForbidden, models.CodeForbidden
			if errors.Is(err, ErrNotStudent) {
				status, code = http.StatusUnauthorized, models.CodeUnauthorized
			}
			CodedErrorResponse(w, status, code, err.Error())
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	}
}

// ClaimsFrom returns the claims stored by Requires.
func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(auth.Claims)
	return claims, ok
}
