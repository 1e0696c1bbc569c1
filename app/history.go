package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/warp/vip-ledger/generic"
)

// ErrNoHistory is returned by RunHistory when no history store is open.
var ErrNoHistory = errors.New("no history database (set -history or VIP_HISTORY_DB)")

// =============================================================================
// viphistory
// =============================================================================

// RunHistory lists the most recent recorded runs, newest first.
func RunHistory(ctx context.Context, env *Env) error {
	if env.History == nil {
		return ErrNoHistory
	}

	reconciliations, err := env.History.ReconciliationRuns(ctx, env.Config.Limit)
	if err != nil {
		return fmt.Errorf("listing reconciliation runs: %w", err)
	}
	reclassifications, err := env.History.ReclassificationRuns(ctx, env.Config.Limit)
	if err != nil {
		return fmt.Errorf("listing reclassification runs: %w", err)
	}

	return WriteHistory(env.Stdout, reconciliations, reclassifications)
}

// WriteHistory prints one line per run, plus one indented line per customer
// whose reconciliation was inconsistent.
func WriteHistory(w io.Writer, reconciliations []generic.ReconciliationRun, reclassifications []generic.ReclassificationRun) error {
	var sb strings.Builder

	sb.WriteString("Reconciliation runs:\n")
	if len(reconciliations) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, run := range reconciliations {
		fmt.Fprintf(&sb, "  %s  %s  %s  customers=%d totalDifference=%s\n",
			run.RanAt.Format(time.RFC3339), run.ID, run.SnapshotPath, len(run.Balances), run.TotalDifference())
		for _, b := range run.Balances {
			if !b.Consistent() {
				fmt.Fprintf(&sb, "    %s: difference %s\n", b.EntityID, b.Difference())
			}
		}
	}

	sb.WriteString("Reclassification runs:\n")
	if len(reclassifications) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, run := range reclassifications {
		mode := "applied"
		if run.DryRun {
			mode = "dry-run"
		}
		fmt.Fprintf(&sb, "  %s  %s  %s  %s updated=%d\n",
			run.RanAt.Format(time.RFC3339), run.ID, run.SnapshotPath, mode, run.Total())
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
