// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/classroom-vote/db"
	"github.com/danielhkuo/classroom-vote/models"
	"github.com/danielhkuo/classroom-vote/testutil"
)

// groupSet is a fixed catalog for feedback checks.
type groupSet map[string]bool

func (g groupSet) Exists(id string) bool { return g[id] }

type fixture struct {
	conn       *sql.DB
	dialect    db.Dialect
	identities *Identities
	ledger     *Ledger
	feedbacks  *Feedbacks
	reports    *Reports
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conn, dialect := testutil.SetupTestDB(t)
	groups := testutil.TestGroups()
	testutil.SeedGroups(t, conn, groups)

	known := groupSet{}
	for _, g := range groups {
		known[g.ID] = true
	}

	return &fixture{
		conn:       conn,
		dialect:    dialect,
		identities: NewIdentities(conn, dialect),
		ledger:     NewLedger(conn, dialect),
		feedbacks:  NewFeedbacks(conn, dialect, known),
		reports:    NewReports(conn, dialect),
	}
}

func (f *fixture) register(t *testing.T, id, name string) models.Registration {
	t.Helper()
	reg, err := f.identities.Register(context.Background(), models.Student{StudentID: id, Name: name})
	require.NoError(t, err)
	return reg
}

func (f *fixture) votes(t *testing.T, id string) []string {
	t.Helper()
	votes, err := f.ledger.VotesFor(context.Background(), id)
	require.NoError(t, err)
	ids := make([]string, 0, len(votes))
	for _, v := range votes {
		ids = append(ids, v.GroupID)
	}
	return ids
}

func (f *fixture) locked(t *testing.T, id string) bool {
	t.Helper()
	s, err := f.identities.Get(context.Background(), id)
	require.NoError(t, err)
	return s.Locked
}
