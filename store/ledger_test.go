// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/classroom-vote/db"
	"github.com/danielhkuo/classroom-vote/models"
	"github.com/danielhkuo/classroom-vote/testutil"
)

const alice = "123456789"

func TestCast(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, alice, "Alice")

	n, err := f.ledger.Cast(ctx, alice, "G1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = f.ledger.Cast(ctx, alice, "G1")
	assert.ErrorIs(t, err, models.ErrDuplicateVote)

	n, err = f.ledger.Cast(ctx, alice, "G2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, []string{"G1", "G2"}, f.votes(t, alice))
}

func TestCast_Unregistered(t *testing.T) {
	f := setup(t)

	_, err := f.ledger.Cast(context.Background(), "987654321", "G1")
	assert.ErrorIs(t, err, models.ErrStudentNotFound)
	assert.Equal(t, 0, testutil.CountRows(t, f.conn, "votes", ""))
}

func TestCast_Ceiling(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, alice, "Alice")

	for _, g := range []string{"G1", "G2", "G3"} {
		_, err := f.ledger.Cast(ctx, alice, g)
		require.NoError(t, err)
	}

	_, err := f.ledger.Cast(ctx, alice, "G4")
	assert.ErrorIs(t, err, models.ErrVoteLimitExceeded)
	assert.Len(t, f.votes(t, alice), models.MaxVotes)
}

func TestCast_ConcurrentCeiling(t *testing.T) {
	f := setup(t)
	f.register(t, alice, "Alice")

	const attempts = 10
	var ok, limited atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.ledger.Cast(context.Background(), alice, fmt.Sprintf("G%d", i+1))
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, models.ErrVoteLimitExceeded):
				limited.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(models.MaxVotes), ok.Load())
	assert.Equal(t, int32(attempts-models.MaxVotes), limited.Load())
	assert.Equal(t, models.MaxVotes, testutil.CountRows(t, f.conn, "votes", "student_id = $1", alice))
}

func TestCast_ConcurrentSameGroup(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, alice, "Alice")
	for _, g := range []string{"G1", "G2"} {
		_, err := f.ledger.Cast(ctx, alice, g)
		require.NoError(t, err)
	}

	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Cast(context.Background(), alice, "G5")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, models.ErrDuplicateVote):
				dup.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(1), dup.Load())
	assert.Len(t, f.votes(t, alice), 3)
}

func TestRetract(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, alice, "Alice")
	_, err := f.ledger.Cast(ctx, alice, "G1")
	require.NoError(t, err)

	n, err := f.ledger.Retract(ctx, alice, "G1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = f.ledger.Retract(ctx, alice, "G1")
	assert.ErrorIs(t, err, models.ErrVoteNotFound)
}

func TestToggle_Symmetry(t *testing.T) {
	starts := [][]string{
		{},
		{"G1"},
		{"G1", "G2"},
		{"G3"}, // toggled group already present
	}

	for _, start := range starts {
		t.Run(fmt.Sprint(start), func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()
			f.register(t, alice, "Alice")
			for _, g := range start {
				_, err := f.ledger.Cast(ctx, alice, g)
				require.NoError(t, err)
			}
			before := f.votes(t, alice)

			first, err := f.ledger.Toggle(ctx, alice, "G3")
			require.NoError(t, err)
			second, err := f.ledger.Toggle(ctx, alice, "G3")
			require.NoError(t, err)

			assert.NotEqual(t, first.Voting, second.Voting)
			assert.Equal(t, len(before), second.Total)
			assert.ElementsMatch(t, before, f.votes(t, alice))
		})
	}
}

func TestToggle_Ceiling(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, alice, "Alice")
	for _, g := range []string{"G1", "G2", "G3"} {
		res, err := f.ledger.Toggle(ctx, alice, g)
		require.NoError(t, err)
		assert.True(t, res.Voting)
	}

	_, err := f.ledger.Toggle(ctx, alice, "G4")
	assert.ErrorIs(t, err, models.ErrVoteLimitExceeded)

	// Toggling off still works at the ceiling
	res, err := f.ledger.Toggle(ctx, alice, "G2")
	require.NoError(t, err)
	assert.False(t, res.Voting)
	assert.Equal(t, 2, res.Total)
}

func TestConfirm(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, alice, "Alice")
	_, err := f.ledger.Cast(ctx, alice, "G5")
	require.NoError(t, err)

	at := time.Date(2025, 5, 20, 9, 30, 0, 0, time.UTC)
	f.ledger.SetClock(func() time.Time { return at })

	confirmed, err := f.ledger.Confirm(ctx, alice, []string{"G1", "G2", "G3"})
	require.NoError(t, err)
	require.Len(t, confirmed, 3)

	assert.ElementsMatch(t, []string{"G1", "G2", "G3"}, f.votes(t, alice), "staged vote replaced")
	assert.True(t, f.locked(t, alice))

	stored, err := f.ledger.VotesFor(ctx, alice)
	require.NoError(t, err)
	for _, v := range stored {
		assert.True(t, v.VoteTime.Equal(at), "vote time %v", v.VoteTime)
	}
}

func TestConfirm_Staged(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, alice, "Alice")

	_, err := f.ledger.Confirm(ctx, alice, nil)
	assert.ErrorIs(t, err, models.ErrWrongCount)

	for _, g := range []string{"G2", "G4", "G5"} {
		_, err := f.ledger.Cast(ctx, alice, g)
		require.NoError(t, err)
	}

	confirmed, err := f.ledger.Confirm(ctx, alice, nil)
	require.NoError(t, err)
	assert.Len(t, confirmed, 3)
	assert.ElementsMatch(t, []string{"G2", "G4", "G5"}, f.votes(t, alice))
	assert.True(t, f.locked(t, alice))
}

func TestConfirm_BadSelection(t *testing.T) {
	f := setup(t)
	f.register(t, alice, "Alice")

	for name, sel := range map[string][]string{
		"two":      {"G1", "G2"},
		"four":     {"G1", "G2", "G3", "G4"},
		"repeated": {"G1", "G1", "G2"},
		"blank":    {"G1", "", "G2"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.ledger.Confirm(context.Background(), alice, sel)
			assert.ErrorIs(t, err, models.ErrWrongCount)
		})
	}

	assert.False(t, f.locked(t, alice))
	assert.Empty(t, f.votes(t, alice))
}

func TestLockMonotonicity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, alice, "Alice")

	_, err := f.ledger.Confirm(ctx, alice, []string{"G1", "G2", "G3"})
	require.NoError(t, err)
	before := f.votes(t, alice)

	_, err = f.ledger.Cast(ctx, alice, "G4")
	assert.ErrorIs(t, err, models.ErrStudentLocked)
	_, err = f.ledger.Retract(ctx, alice, "G1")
	assert.ErrorIs(t, err, models.ErrStudentLocked)
	_, err = f.ledger.Toggle(ctx, alice, "G1")
	assert.ErrorIs(t, err, models.ErrStudentLocked)
	_, err = f.ledger.Toggle(ctx, alice, "G5")
	assert.ErrorIs(t, err, models.ErrStudentLocked)
	_, err = f.ledger.Confirm(ctx, alice, []string{"G3", "G4", "G5"})
	assert.ErrorIs(t, err, models.ErrAlreadyConfirmed)
	_, err = f.ledger.Confirm(ctx, alice, nil)
	assert.ErrorIs(t, err, models.ErrAlreadyConfirmed)

	assert.Equal(t, before, f.votes(t, alice))
	assert.True(t, f.locked(t, alice))
}

// installVoteFault makes any insert of a vote for G-FAIL abort its statement.
func installVoteFault(t *testing.T, f *fixture) {
	t.Helper()

	var stmt string
	switch f.dialect {
	case db.Postgres:
		stmt = `
			CREATE OR REPLACE FUNCTION fail_vote() RETURNS trigger AS $$
			BEGIN
				IF NEW.group_id = 'G-FAIL' THEN
					RAISE EXCEPTION 'injected fault';
				END IF;
				RETURN NEW;
			END;
			$$ LANGUAGE plpgsql;
			CREATE TRIGGER fail_confirm BEFORE INSERT ON votes
				FOR EACH ROW EXECUTE FUNCTION fail_vote();
		`
	default:
		stmt = `
			CREATE TRIGGER fail_confirm BEFORE INSERT ON votes
			WHEN NEW.group_id = 'G-FAIL'
			BEGIN
				SELECT RAISE(ABORT, 'injected fault');
			END;
		`
	}
	_, err := f.conn.Exec(stmt)
	require.NoError(t, err)
}

func TestConfirm_Atomicity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, alice, "Alice")
	_, err := f.ledger.Cast(ctx, alice, "G1")
	require.NoError(t, err)

	installVoteFault(t, f)

	// G2 and G3 are written before the fault fires on the last insert
	_, err = f.ledger.Confirm(ctx, alice, []string{"G2", "G3", "G-FAIL"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrWrongCount)

	assert.Equal(t, []string{"G1"}, f.votes(t, alice), "staged votes restored")
	assert.False(t, f.locked(t, alice))

	// The student can still confirm afterwards
	_, err = f.ledger.Confirm(ctx, alice, []string{"G1", "G2", "G3"})
	require.NoError(t, err)
	assert.True(t, f.locked(t, alice))
}

func TestConfirm_Concurrent(t *testing.T) {
	f := setup(t)
	f.register(t, alice, "Alice")

	selections := [][]string{
		{"G1", "G2", "G3"},
		{"G2", "G3", "G4"},
		{"G3", "G4", "G5"},
	}

	var ok, refused atomic.Int32
	var wg sync.WaitGroup
	for _, sel := range selections {
		wg.Add(1)
		go func(sel []string) {
			defer wg.Done()
			_, err := f.ledger.Confirm(context.Background(), alice, sel)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, models.ErrAlreadyConfirmed):
				refused.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(sel)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(2), refused.Load())
	assert.Len(t, f.votes(t, alice), 3)
}
