/*
store.go - Persistence interface for run history

PURPOSE:
  A reconciliation or reclassification run is a one-shot batch over a
  snapshot file; nothing about it survives the process unless it is recorded.
  The HistoryStore keeps a record of each run so that successive reports can
  be compared ("did the Alice difference change since last week?").

KEY TYPES:
  ReconciliationRun:   One balance report, with a row per customer
  ReclassificationRun: One payment-method correction pass, with counts

APPEND-ONLY CONTRACT:
  Runs are only ever added. There is no Update or Delete; a rerun is a new
  record with a new ID.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite file (or ":memory:")
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - app/: Records runs after the primary output succeeded
*/
package generic

import (
	"context"
	"time"
)

// =============================================================================
// RUN RECORDS
// =============================================================================

type ReconciliationRun struct {
	ID           string
	SnapshotPath string
	RanAt        time.Time
	Balances     []Balance
}

// TotalDifference sums the per-customer differences of the run.
func (r ReconciliationRun) TotalDifference() Amount {
	return TotalDifference(r.Balances)
}

type ReclassificationRun struct {
	ID           string
	SnapshotPath string
	RanAt        time.Time
	DryRun       bool
	Counts       []EntityCount
}

// EntityCount is a per-entity counter, kept as a slice to preserve order.
type EntityCount struct {
	EntityID EntityID
	Count    int
}

// Total sums all counts of the run.
func (r ReclassificationRun) Total() int {
	total := 0
	for _, c := range r.Counts {
		total += c.Count
	}
	return total
}

// =============================================================================
// HISTORY STORE
// =============================================================================

// HistoryStore persists run records. Listing methods return the newest runs
// first; limit <= 0 means no limit.
type HistoryStore interface {
	SaveReconciliationRun(ctx context.Context, run ReconciliationRun) error
	ReconciliationRuns(ctx context.Context, limit int) ([]ReconciliationRun, error)

	SaveReclassificationRun(ctx context.Context, run ReclassificationRun) error
	ReclassificationRuns(ctx context.Context, limit int) ([]ReclassificationRun, error)
}
