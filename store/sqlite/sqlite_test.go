package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vip-ledger/generic"
	"github.com/warp/vip-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func bal(customer string, topup, spent, stored int64) generic.Balance {
	return generic.Balance{
		EntityID:   generic.EntityID(customer),
		TotalTopup: generic.NewAmount(topup),
		TotalSpent: generic.NewAmount(spent),
		Stored:     generic.NewAmount(stored),
	}
}

var jan1 = time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

// =============================================================================
// RECONCILIATION RUNS
// =============================================================================

func TestStore_ReconciliationRun_RoundTrip(t *testing.T) {
	// GIVEN: A run with two balances in report order
	// WHEN: Saved and listed
	// THEN: The run comes back with balances in the same order and values

	store := newTestStore(t)
	ctx := context.Background()

	run := generic.ReconciliationRun{
		ID:           "run-1",
		SnapshotPath: "backup.json",
		RanAt:        jan1,
		Balances:     []generic.Balance{bal("Alice", 500000, 200000, 250000), bal("Bob", 0, 0, 0)},
	}
	require.NoError(t, store.SaveReconciliationRun(ctx, run))

	runs, err := store.ReconciliationRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, "backup.json", got.SnapshotPath)
	assert.True(t, got.RanAt.Equal(jan1))
	require.Len(t, got.Balances, 2)
	assert.Equal(t, generic.EntityID("Alice"), got.Balances[0].EntityID)
	assert.Equal(t, "50000", got.Balances[0].Difference().String())
	assert.Equal(t, "50000", got.TotalDifference().String())
}

func TestStore_ReconciliationRuns_NewestFirstWithLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveReconciliationRun(ctx, generic.ReconciliationRun{
			ID:           id,
			SnapshotPath: "backup.json",
			RanAt:        jan1.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := store.ReconciliationRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
	assert.Empty(t, runs[0].Balances)
}

func TestStore_DuplicateRunID_RolledBack(t *testing.T) {
	// GIVEN: A saved run
	// WHEN: Another run with the same ID is saved
	// THEN: It fails and leaves no partial balances behind

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveReconciliationRun(ctx, generic.ReconciliationRun{
		ID: "dup", SnapshotPath: "a.json", RanAt: jan1,
		Balances: []generic.Balance{bal("Alice", 1, 0, 1)},
	}))
	err := store.SaveReconciliationRun(ctx, generic.ReconciliationRun{
		ID: "dup", SnapshotPath: "b.json", RanAt: jan1,
		Balances: []generic.Balance{bal("Bob", 1, 0, 1)},
	})
	require.Error(t, err)

	runs, err := store.ReconciliationRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Len(t, runs[0].Balances, 1)
	assert.Equal(t, generic.EntityID("Alice"), runs[0].Balances[0].EntityID)
}

// =============================================================================
// RECLASSIFICATION RUNS
// =============================================================================

func TestStore_ReclassificationRun_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := generic.ReclassificationRun{
		ID:           "rc-1",
		SnapshotPath: "backup.json",
		RanAt:        jan1,
		DryRun:       true,
		Counts: []generic.EntityCount{
			{EntityID: "Kudo", Count: 3},
			{EntityID: "Tùng", Count: 0},
		},
	}
	require.NoError(t, store.SaveReclassificationRun(ctx, run))

	runs, err := store.ReclassificationRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].DryRun)
	assert.Equal(t, run.Counts, runs[0].Counts)
	assert.Equal(t, 3, runs[0].Total())
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveReclassificationRun(ctx, generic.ReclassificationRun{ID: "x", SnapshotPath: "b.json", RanAt: jan1}))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	runs, err := reopened.ReclassificationRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "x", runs[0].ID)
}
