// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/classroom-vote/models"
	"github.com/danielhkuo/classroom-vote/testutil"
)

const aliceID = "123456789"

func TestGroups(t *testing.T) {
	env := setupEnv(t)

	w := httptest.NewRecorder()
	env.voting.Groups(w, httptest.NewRequest("GET", "/api/groups", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.GroupsResponse
	testutil.AssertJSON(t, w, &resp)
	require.Len(t, resp.Groups, 5)
	assert.Equal(t, "G1", resp.Groups[0].ID)
	assert.Equal(t, "G5", resp.Groups[4].ID)
}

func TestCast(t *testing.T) {
	env := setupEnv(t)
	env.register(t, aliceID, "Alice")

	cast := func(groupID string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/api/vote", models.VoteRequest{GroupID: groupID}, nil)
		return env.student(env.voting.Cast, env.asStudent(t, req, aliceID))
	}

	tests := []struct {
		name           string
		groupID        string
		expectedStatus int
		expectedCode   string
		expectedCount  int
	}{
		{"first vote", "G1", http.StatusOK, "", 1},
		{"duplicate vote", "G1", http.StatusConflict, models.CodeDuplicateVote, 0},
		{"unknown group", "G9", http.StatusBadRequest, models.CodeUnknownGroup, 0},
		{"missing group", "", http.StatusBadRequest, models.CodeInvalidRequest, 0},
		{"second vote", "G2", http.StatusOK, "", 2},
		{"third vote", "G3", http.StatusOK, "", 3},
		{"fourth vote", "G4", http.StatusConflict, models.CodeVoteLimitExceeded, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := cast(tt.groupID)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedCode != "" {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				assert.Equal(t, tt.expectedCode, resp.Code)
				return
			}

			var resp models.VoteResponse
			testutil.AssertJSON(t, w, &resp)
			assert.True(t, resp.Success)
			assert.True(t, resp.Voted)
			assert.Equal(t, tt.expectedCount, resp.VoteCount)
		})
	}

	assert.Equal(t, 3, testutil.CountRows(t, env.conn, "votes", "student_id = $1", aliceID))
}

func TestRetract(t *testing.T) {
	env := setupEnv(t)
	env.register(t, aliceID, "Alice")
	testutil.AddTestVote(t, env.conn, aliceID, "G1")

	retract := func(groupID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("DELETE", "/api/vote/"+groupID, nil)
		req.SetPathValue("group", groupID)
		return env.student(env.voting.Retract, env.asStudent(t, req, aliceID))
	}

	w := retract("G1")
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.VoteResponse
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, 0, resp.VoteCount)
	assert.Empty(t, resp.Votes)

	w = retract("G1")
	testutil.AssertStatus(t, w, http.StatusConflict)
	var errResp models.ErrorResponse
	testutil.AssertJSON(t, w, &errResp)
	assert.Equal(t, models.CodeVoteNotFound, errResp.Code)
}

func TestToggle(t *testing.T) {
	env := setupEnv(t)
	env.register(t, aliceID, "Alice")

	toggle := func(groupID string) models.VoteResponse {
		t.Helper()
		req := testutil.MakeFormRequest("POST", "/api/toggle_vote", url.Values{"group_id": {groupID}})
		w := env.student(env.voting.Toggle, env.asStudent(t, req, aliceID))
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.VoteResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	on := toggle("G2")
	assert.True(t, on.Voted)
	assert.Equal(t, "Vote added", on.Message)
	assert.Equal(t, []string{"G2"}, on.Votes)

	off := toggle("G2")
	assert.False(t, off.Voted)
	assert.Equal(t, "Vote removed", off.Message)
	assert.Equal(t, 0, off.VoteCount)

	toggle("G1")
	toggle("G3")
	toggle("G4")
	req := testutil.MakeRequest("POST", "/api/toggle_vote", models.VoteRequest{GroupID: "G5"}, nil)
	w := env.student(env.voting.Toggle, env.asStudent(t, req, aliceID))
	testutil.AssertStatus(t, w, http.StatusConflict)
	var errResp models.ErrorResponse
	testutil.AssertJSON(t, w, &errResp)
	assert.Equal(t, models.CodeVoteLimitExceeded, errResp.Code)
}

func TestToggleRemovedGroup(t *testing.T) {
	env := setupEnv(t)
	env.register(t, aliceID, "Alice")
	testutil.AddTestVote(t, env.conn, aliceID, "OLD")

	toggle := func() *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/api/toggle_vote", models.VoteRequest{GroupID: "OLD"}, nil)
		return env.student(env.voting.Toggle, env.asStudent(t, req, aliceID))
	}

	// An existing vote for a group no longer in the catalog can be removed
	testutil.AssertStatus(t, toggle(), http.StatusOK)

	// but not added back
	w := toggle()
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	var errResp models.ErrorResponse
	testutil.AssertJSON(t, w, &errResp)
	assert.Equal(t, models.CodeUnknownGroup, errResp.Code)
}

func TestConfirm(t *testing.T) {
	t.Run("explicit selection", func(t *testing.T) {
		env := setupEnv(t)
		env.register(t, aliceID, "Alice")
		testutil.AddTestVote(t, env.conn, aliceID, "G5")

		req := testutil.MakeRequest("POST", "/api/vote/confirm",
			models.ConfirmRequest{SelectedVotes: []string{"G1", "G2", "G3"}}, nil)
		w := env.student(env.voting.Confirm, env.asStudent(t, req, aliceID))

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.VoteResponse
		testutil.AssertJSON(t, w, &resp)
		assert.True(t, resp.Locked)
		assert.ElementsMatch(t, []string{"G1", "G2", "G3"}, resp.Votes)
		assert.Equal(t, 0, testutil.CountRows(t, env.conn, "votes", "group_id = $1", "G5"))
	})

	t.Run("staged votes with empty body", func(t *testing.T) {
		env := setupEnv(t)
		env.register(t, aliceID, "Alice")
		for _, g := range []string{"G2", "G4", "G5"} {
			testutil.AddTestVote(t, env.conn, aliceID, g)
		}

		req := httptest.NewRequest("POST", "/api/vote/confirm", nil)
		req.Header.Set("Content-Type", "application/json")
		w := env.student(env.voting.Confirm, env.asStudent(t, req, aliceID))

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.VoteResponse
		testutil.AssertJSON(t, w, &resp)
		assert.True(t, resp.Locked)
		assert.Equal(t, 3, resp.VoteCount)
	})

	t.Run("form selection", func(t *testing.T) {
		env := setupEnv(t)
		env.register(t, aliceID, "Alice")

		req := testutil.MakeFormRequest("POST", "/api/vote/confirm", url.Values{
			"selected_votes[]": {"G1", "G3", "G5"},
		})
		w := env.student(env.voting.Confirm, env.asStudent(t, req, aliceID))
		testutil.AssertStatus(t, w, http.StatusOK)
	})

	t.Run("refusals", func(t *testing.T) {
		env := setupEnv(t)
		env.register(t, aliceID, "Alice")

		confirm := func(selected []string) *httptest.ResponseRecorder {
			req := testutil.MakeRequest("POST", "/api/vote/confirm", models.ConfirmRequest{SelectedVotes: selected}, nil)
			return env.student(env.voting.Confirm, env.asStudent(t, req, aliceID))
		}

		tests := []struct {
			name           string
			selected       []string
			expectedStatus int
			expectedCode   string
		}{
			{"two groups", []string{"G1", "G2"}, http.StatusBadRequest, models.CodeWrongCount},
			{"repeated group", []string{"G1", "G1", "G2"}, http.StatusBadRequest, models.CodeWrongCount},
			{"unknown group", []string{"G1", "G2", "G9"}, http.StatusBadRequest, models.CodeUnknownGroup},
			{"nothing staged", nil, http.StatusBadRequest, models.CodeWrongCount},
			{"valid", []string{"G1", "G2", "G3"}, http.StatusOK, ""},
			{"second confirm", []string{"G3", "G4", "G5"}, http.StatusConflict, models.CodeAlreadyConfirmed},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := confirm(tt.selected)
				testutil.AssertStatus(t, w, tt.expectedStatus)
				if tt.expectedCode != "" {
					var resp models.ErrorResponse
					testutil.AssertJSON(t, w, &resp)
					assert.Equal(t, tt.expectedCode, resp.Code)
				}
			})
		}

		// The locked selection is the first valid one
		var votes []string
		rows, err := env.conn.Query(`SELECT group_id FROM votes WHERE student_id = $1`, aliceID)
		require.NoError(t, err)
		defer rows.Close()
		for rows.Next() {
			var g string
			require.NoError(t, rows.Scan(&g))
			votes = append(votes, g)
		}
		assert.ElementsMatch(t, []string{"G1", "G2", "G3"}, votes)
	})
}

func TestLockedStudentCannotChangeVotes(t *testing.T) {
	env := setupEnv(t)
	testutil.CreateTestStudent(t, env.conn, aliceID, "Alice", true)
	for _, g := range []string{"G1", "G2", "G3"} {
		testutil.AddTestVote(t, env.conn, aliceID, g)
	}

	castReq := testutil.MakeRequest("POST", "/api/vote", models.VoteRequest{GroupID: "G4"}, nil)
	toggleReq := testutil.MakeRequest("POST", "/api/toggle_vote", models.VoteRequest{GroupID: "G1"}, nil)
	retractReq := httptest.NewRequest("DELETE", "/api/vote/G1", nil)
	retractReq.SetPathValue("group", "G1")

	for name, w := range map[string]*httptest.ResponseRecorder{
		"cast":    env.student(env.voting.Cast, env.asStudent(t, castReq, aliceID)),
		"toggle":  env.student(env.voting.Toggle, env.asStudent(t, toggleReq, aliceID)),
		"retract": env.student(env.voting.Retract, env.asStudent(t, retractReq, aliceID)),
	} {
		t.Run(name, func(t *testing.T) {
			testutil.AssertStatus(t, w, http.StatusConflict)
			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			assert.Equal(t, models.CodeAlreadyLocked, resp.Code)
		})
	}

	assert.Equal(t, 3, testutil.CountRows(t, env.conn, "votes", "student_id = $1", aliceID))
}

func TestVoteResponseRefreshesSession(t *testing.T) {
	env := setupEnv(t)
	env.register(t, aliceID, "Alice")

	req := testutil.MakeRequest("POST", "/api/vote", models.VoteRequest{GroupID: "G3"}, nil)
	w := env.student(env.voting.Cast, env.asStudent(t, req, aliceID))
	testutil.AssertStatus(t, w, http.StatusOK)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	claims, err := env.sessions.Parse(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, []string{"G3"}, claims.Votes)
}

func TestStorageFault(t *testing.T) {
	env := setupEnv(t)
	env.register(t, aliceID, "Alice")
	require.NoError(t, env.conn.Close())

	req := testutil.MakeRequest("POST", "/api/vote", models.VoteRequest{GroupID: "G1"}, nil)
	w := env.student(env.voting.Cast, env.asStudent(t, req, aliceID))

	testutil.AssertStatus(t, w, http.StatusInternalServerError)
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, models.CodeStorage, resp.Code)
	assert.NotContains(t, resp.Message, "sql")
}
