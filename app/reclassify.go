package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/warp/vip-ledger/generic"
	"github.com/warp/vip-ledger/snapshot"
	"github.com/warp/vip-ledger/vip"
)

// =============================================================================
// vipreclassify
// =============================================================================

const summaryRuleWidth = 60

// RunReclassify switches eligible order lines to VIP and writes the snapshot
// back in place. With DryRun set the snapshot is not written. On any error the
// file is left as it was.
func RunReclassify(ctx context.Context, env *Env) error {
	cfg := env.Config
	log := env.logger()

	rules, err := LoadRules(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Reading file: %s\n", cfg.SnapshotPath)
	doc, err := snapshot.Load(cfg.SnapshotPath)
	if err != nil {
		return err
	}

	plan, err := vip.NewReclassifier(rules.Policies).Plan(doc)
	if err != nil {
		return err
	}
	result := plan.Result()
	log.Info("reclassification planned", "path", cfg.SnapshotPath, "updates", result.Total())

	for _, u := range result.Updates {
		fmt.Fprintf(env.Stdout, "  ✓ Updated %s in: %s (%s)\n", u.Customer, u.Item, generic.DatePrefix(u.Date))
	}

	if cfg.DryRun {
		fmt.Fprintf(env.Stdout, "\nDry run: not writing %s\n", cfg.SnapshotPath)
	} else {
		plan.Apply()
		fmt.Fprintf(env.Stdout, "\nWriting updated data to: %s\n", cfg.SnapshotPath)
		if err := snapshot.Save(cfg.SnapshotPath, doc); err != nil {
			return err
		}
	}

	if err := WriteSummary(env.Stdout, result); err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, "\n✅ Update completed successfully!")

	env.recordReclassification(ctx, result, cfg.DryRun)
	return nil
}

// WriteSummary prints the per-customer counts in policy order.
func WriteSummary(w io.Writer, result vip.Result) error {
	rule := strings.Repeat("=", summaryRuleWidth)

	var sb strings.Builder
	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("UPDATE SUMMARY:\n")
	sb.WriteString(rule + "\n")
	for _, c := range result.Counts {
		fmt.Fprintf(&sb, "  %s: %d transactions updated to VIP\n", c.EntityID, c.Count)
	}
	fmt.Fprintf(&sb, "\nTotal: %d transactions updated\n", result.Total())
	sb.WriteString(rule + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
