/*
Package sqlite provides a SQLite-backed implementation of generic.HistoryStore.

PURPOSE:
  Keeps a record of every reconciliation and reclassification run so that
  differences can be tracked over time. The snapshot file stays the only
  source of truth for balances; this database only remembers what each run
  reported.

KEY TABLES:
  reconciliation_runs:      One row per vipbalance run
  reconciliation_balances:  One row per customer per run
  reclassification_runs:    One row per vipreclassify run
  reclassification_counts:  One row per policy customer per run

APPEND-ONLY:
  Runs are inserted, never updated or deleted.

AMOUNTS:
  Stored as TEXT (decimal string) so no precision is lost.

USAGE:
  store, err := sqlite.New("./history.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - generic/store.go: Interface definition
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/vip-ledger/generic"
)

// Store implements generic.HistoryStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ generic.HistoryStore = (*Store)(nil)

// New opens (creating if needed) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second pooled connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reconciliation_runs (
		id TEXT PRIMARY KEY,
		snapshot_path TEXT NOT NULL,
		ran_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reconciliation_runs_ran_at
		ON reconciliation_runs(ran_at DESC);

	CREATE TABLE IF NOT EXISTS reconciliation_balances (
		run_id TEXT NOT NULL REFERENCES reconciliation_runs(id),
		position INTEGER NOT NULL,
		customer TEXT NOT NULL,
		total_topup TEXT NOT NULL,
		total_spent TEXT NOT NULL,
		stored TEXT NOT NULL,
		PRIMARY KEY (run_id, customer)
	);

	CREATE TABLE IF NOT EXISTS reclassification_runs (
		id TEXT PRIMARY KEY,
		snapshot_path TEXT NOT NULL,
		ran_at TEXT NOT NULL,
		dry_run INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_reclassification_runs_ran_at
		ON reclassification_runs(ran_at DESC);

	CREATE TABLE IF NOT EXISTS reclassification_counts (
		run_id TEXT NOT NULL REFERENCES reclassification_runs(id),
		position INTEGER NOT NULL,
		customer TEXT NOT NULL,
		updated INTEGER NOT NULL,
		PRIMARY KEY (run_id, customer)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECONCILIATION RUNS
// =============================================================================

// SaveReconciliationRun inserts a run and its balances atomically.
func (s *Store) SaveReconciliationRun(ctx context.Context, run generic.ReconciliationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reconciliation_runs (id, snapshot_path, ran_at) VALUES (?, ?, ?)`,
			run.ID, run.SnapshotPath, run.RanAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert reconciliation run: %w", err)
		}
		for i, b := range run.Balances {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO reconciliation_balances (run_id, position, customer, total_topup, total_spent, stored)
				VALUES (?, ?, ?, ?, ?, ?)`,
				run.ID, i, string(b.EntityID), b.TotalTopup.String(), b.TotalSpent.String(), b.Stored.String(),
			); err != nil {
				return fmt.Errorf("insert balance %q: %w", b.EntityID, err)
			}
		}
		return nil
	})
}

// ReconciliationRuns returns runs newest first, with their balances.
func (s *Store) ReconciliationRuns(ctx context.Context, limit int) ([]generic.ReconciliationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, snapshot_path, ran_at FROM reconciliation_runs
		ORDER BY ran_at DESC, rowid DESC
		LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, err
	}
	var runs []generic.ReconciliationRun
	for rows.Next() {
		var r generic.ReconciliationRun
		var ranAt string
		if err := rows.Scan(&r.ID, &r.SnapshotPath, &ranAt); err != nil {
			rows.Close()
			return nil, err
		}
		r.RanAt, _ = time.Parse(time.RFC3339Nano, ranAt)
		runs = append(runs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		balances, err := s.loadBalances(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Balances = balances
	}
	return runs, nil
}

func (s *Store) loadBalances(ctx context.Context, runID string) ([]generic.Balance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT customer, total_topup, total_spent, stored FROM reconciliation_balances
		WHERE run_id = ?
		ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []generic.Balance
	for rows.Next() {
		var customer, topup, spent, stored string
		if err := rows.Scan(&customer, &topup, &spent, &stored); err != nil {
			return nil, err
		}
		b := generic.Balance{EntityID: generic.EntityID(customer)}
		if b.TotalTopup, err = parseAmount(topup); err != nil {
			return nil, err
		}
		if b.TotalSpent, err = parseAmount(spent); err != nil {
			return nil, err
		}
		if b.Stored, err = parseAmount(stored); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// =============================================================================
// RECLASSIFICATION RUNS
// =============================================================================

// SaveReclassificationRun inserts a run and its counts atomically.
func (s *Store) SaveReclassificationRun(ctx context.Context, run generic.ReclassificationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reclassification_runs (id, snapshot_path, ran_at, dry_run) VALUES (?, ?, ?, ?)`,
			run.ID, run.SnapshotPath, run.RanAt.UTC().Format(time.RFC3339Nano), run.DryRun,
		); err != nil {
			return fmt.Errorf("insert reclassification run: %w", err)
		}
		for i, c := range run.Counts {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO reclassification_counts (run_id, position, customer, updated)
				VALUES (?, ?, ?, ?)`,
				run.ID, i, string(c.EntityID), c.Count,
			); err != nil {
				return fmt.Errorf("insert count %q: %w", c.EntityID, err)
			}
		}
		return nil
	})
}

// ReclassificationRuns returns runs newest first, with their counts.
func (s *Store) ReclassificationRuns(ctx context.Context, limit int) ([]generic.ReclassificationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, snapshot_path, ran_at, dry_run FROM reclassification_runs
		ORDER BY ran_at DESC, rowid DESC
		LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, err
	}
	var runs []generic.ReclassificationRun
	for rows.Next() {
		var r generic.ReclassificationRun
		var ranAt string
		if err := rows.Scan(&r.ID, &r.SnapshotPath, &ranAt, &r.DryRun); err != nil {
			rows.Close()
			return nil, err
		}
		r.RanAt, _ = time.Parse(time.RFC3339Nano, ranAt)
		runs = append(runs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		counts, err := s.loadCounts(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Counts = counts
	}
	return runs, nil
}

func (s *Store) loadCounts(ctx context.Context, runID string) ([]generic.EntityCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT customer, updated FROM reclassification_counts
		WHERE run_id = ?
		ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []generic.EntityCount
	for rows.Next() {
		var c generic.EntityCount
		var customer string
		if err := rows.Scan(&customer, &c.Count); err != nil {
			return nil, err
		}
		c.EntityID = generic.EntityID(customer)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// sqlLimit maps "no limit" to SQLite's LIMIT -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func parseAmount(value string) (generic.Amount, error) {
	amount, err := generic.ParseAmount(value)
	if err != nil {
		return generic.Amount{}, fmt.Errorf("stored amount: %w", err)
	}
	return amount, nil
}
