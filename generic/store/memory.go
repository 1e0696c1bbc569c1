// Package store provides HistoryStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/vip-ledger/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu                sync.RWMutex
	reconciliations   []generic.ReconciliationRun
	reclassifications []generic.ReclassificationRun
}

var _ generic.HistoryStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

// SaveReconciliationRun appends a run. Append-only.
func (m *Memory) SaveReconciliationRun(_ context.Context, run generic.ReconciliationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run.Balances = append([]generic.Balance(nil), run.Balances...)
	m.reconciliations = append(m.reconciliations, run)
	return nil
}

func (m *Memory) ReconciliationRuns(_ context.Context, limit int) ([]generic.ReconciliationRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.reconciliations, limit), nil
}

// SaveReclassificationRun appends a run. Append-only.
func (m *Memory) SaveReclassificationRun(_ context.Context, run generic.ReclassificationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run.Counts = append([]generic.EntityCount(nil), run.Counts...)
	m.reclassifications = append(m.reclassifications, run)
	return nil
}

func (m *Memory) ReclassificationRuns(_ context.Context, limit int) ([]generic.ReclassificationRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.reclassifications, limit), nil
}

func newestFirst[T any](runs []T, limit int) []T {
	n := len(runs)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]T, 0, n)
	for i := len(runs) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, runs[i])
	}
	return result
}
