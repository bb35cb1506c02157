// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/classroom-vote/cliparse"
	"github.com/danielhkuo/classroom-vote/db"
	"github.com/danielhkuo/classroom-vote/models"
)

// TestDBEnv names the variable that switches the tests to a Postgres database.
// The database is wiped before every test that uses it.
const TestDBEnv = "TEST_DATABASE_URL"

// TestAdminPassword is the plain admin password matching GetTestConfig.
const TestAdminPassword = "letmein"

// SetupTestDB returns a fresh database with the full schema. SQLite files are
// created under t.TempDir(); set TEST_DATABASE_URL to run against Postgres.
func SetupTestDB(t *testing.T) (*sql.DB, db.Dialect) {
	t.Helper()

	ctx := context.Background()
	dialect, url := db.SQLite, filepath.Join(t.TempDir(), "test.db")
	if pg := os.Getenv(TestDBEnv); pg != "" {
		dialect, url = db.Postgres, pg
	}

	conn, err := db.Open(ctx, dialect, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if dialect == db.Postgres {
		if err := db.DropSchema(conn); err != nil {
			t.Fatalf("Failed to clean database: %v", err)
		}
	}
	if err := db.CreateSchema(conn, dialect); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn, dialect
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseType:  string(db.SQLite),
		GroupsFile:    "groups.yaml",
		AdminPassword: TestAdminPassword,
		SessionSecret: "test-session-secret",
		SessionTTL:    time.Hour,
	}
}

// TestGroups returns a five-group catalog.
func TestGroups() []models.Group {
	return []models.Group{
		{ID: "G1", Name: "Solar Car", Teacher: "Ms. Lin", LabNumber: "101"},
		{ID: "G2", Name: "Weather Station", Teacher: "Mr. Chen", LabNumber: "102"},
		{ID: "G3", Name: "Robot Arm", Teacher: "Ms. Wu", LabNumber: "103"},
		{ID: "G4", Name: "Water Filter", Teacher: "Mr. Lee", LabNumber: "104"},
		{ID: "G5", Name: "Smart Garden", Teacher: "Ms. Huang", LabNumber: "105"},
	}
}

// SeedGroups writes groups into the groups table.
func SeedGroups(t *testing.T, conn *sql.DB, groups []models.Group) {
	t.Helper()

	for _, g := range groups {
		_, err := conn.Exec(`
			INSERT INTO "groups" (id, name, teacher, lab_number, description)
			VALUES ($1, $2, $3, $4, $5)
		`, g.ID, g.Name, g.Teacher, g.LabNumber, g.Description)
		if err != nil {
			t.Fatalf("Failed to seed group %s: %v", g.ID, err)
		}
	}
}

// CreateTestStudent inserts a student row directly.
func CreateTestStudent(t *testing.T, conn *sql.DB, studentID, name string, locked bool) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO students (student_id, student_name, student_class, has_voted, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, studentID, name, "", locked, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test student: %v", err)
	}
}

// AddTestVote inserts a vote row directly, bypassing every check.
func AddTestVote(t *testing.T, conn *sql.DB, studentID, groupID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO votes (student_id, group_id, vote_time)
		VALUES ($1, $2, $3)
	`, studentID, groupID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
}

// CountRows returns the number of rows of table matching where.
func CountRows(t *testing.T, conn *sql.DB, table, where string, args ...interface{}) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a form-encoded HTTP test request
func MakeFormRequest(method, path string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// WithCookies copies the cookies set on a previous response onto req.
func WithCookies(req *http.Request, w *httptest.ResponseRecorder) *http.Request {
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
