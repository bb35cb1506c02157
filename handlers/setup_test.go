// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/classroom-vote/auth"
	"github.com/danielhkuo/classroom-vote/catalog"
	"github.com/danielhkuo/classroom-vote/middleware"
	"github.com/danielhkuo/classroom-vote/store"
	"github.com/danielhkuo/classroom-vote/testutil"
	"github.com/danielhkuo/classroom-vote/voting"
)

type testEnv struct {
	conn     *sql.DB
	sessions *auth.Sessions
	students *StudentHandler
	voting   *VotingHandler
	feedback *FeedbackHandler
	admin    *AdminHandler
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, dialect := testutil.SetupTestDB(t)
	groups, err := catalog.New(testutil.TestGroups())
	require.NoError(t, err)
	require.NoError(t, groups.Sync(context.Background(), conn))

	hash, err := auth.HashPassword(testutil.TestAdminPassword)
	require.NoError(t, err)

	service := voting.NewService(store.NewIdentities(conn, dialect), store.NewLedger(conn, dialect), groups)
	feedbacks := store.NewFeedbacks(conn, dialect, groups)
	sessions := auth.NewSessions("handler-test-secret", time.Hour, false)

	return &testEnv{
		conn:     conn,
		sessions: sessions,
		students: NewStudentHandler(service, sessions),
		voting:   NewVotingHandler(service, groups, sessions),
		feedback: NewFeedbackHandler(feedbacks),
		admin:    NewAdminHandler(store.NewReports(conn, dialect), feedbacks, sessions, hash),
	}
}

// asStudent attaches a signed student session to req.
func (e *testEnv) asStudent(t *testing.T, req *http.Request, studentID string) *http.Request {
	t.Helper()
	token, err := e.sessions.Sign(auth.Claims{StudentID: studentID})
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	return req
}

// asAdmin attaches a signed admin session to req.
func (e *testEnv) asAdmin(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	token, err := e.sessions.Sign(auth.Claims{Admin: true})
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	return req
}

// student runs h behind the student guard, as the router does.
func (e *testEnv) student(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	middleware.Requires(e.sessions, middleware.RequireStudent, h)(w, req)
	return w
}

// adminOnly runs h behind the admin guard.
func (e *testEnv) adminOnly(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	middleware.Requires(e.sessions, middleware.RequireAdmin, h)(w, req)
	return w
}

// register creates a student through the handler and fails the test otherwise.
func (e *testEnv) register(t *testing.T, studentID, name string) {
	t.Helper()
	w := httptest.NewRecorder()
	e.students.Register(w, testutil.MakeRequest("POST", "/api/register", map[string]string{
		"student_id": studentID, "student_name": name,
	}, nil))
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, w.Code, w.Body.String())
}
