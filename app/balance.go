package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/warp/vip-ledger/generic"
	"github.com/warp/vip-ledger/snapshot"
	"github.com/warp/vip-ledger/vip"
)

// =============================================================================
// vipbalance
// =============================================================================

// RunBalance reconciles the configured snapshot and prints the report. With
// Apply set, vipList is then rewritten with the calculated balances.
func RunBalance(ctx context.Context, env *Env) error {
	cfg := env.Config
	log := env.logger()

	rules, err := LoadRules(cfg)
	if err != nil {
		return err
	}

	doc, err := snapshot.Load(cfg.SnapshotPath)
	if err != nil {
		return err
	}

	balances, err := vip.NewReconciler(rules).Reconcile(doc)
	if err != nil {
		return err
	}
	log.Info("reconciled", "path", cfg.SnapshotPath, "customers", len(balances))

	switch cfg.Format {
	case "json":
		err = WriteBalanceJSON(env.Stdout, balances)
	default:
		err = WriteBalanceText(env.Stdout, balances)
	}
	if err != nil {
		return err
	}

	if cfg.Apply {
		applyBalances(doc, balances, rules.Currency)
		if err := snapshot.Save(cfg.SnapshotPath, doc); err != nil {
			return err
		}
		log.Info("vipList rewritten", "path", cfg.SnapshotPath, "customers", len(balances))
	}

	env.recordReconciliation(ctx, balances)
	return nil
}

// applyBalances replaces vipList with the calculated balance of every
// reported customer.
func applyBalances(doc *snapshot.Document, balances []generic.Balance, currency string) {
	calculated := make(map[generic.EntityID]generic.Amount, len(balances))
	for _, b := range balances {
		calculated[b.EntityID] = b.Calculated()
	}
	doc.SetVIPList(vip.FormatBalances(calculated, currency))
}

// =============================================================================
// RENDERING
// =============================================================================

const reportSeparatorWidth = 30

// WriteBalanceText prints the human-readable report, one block per customer.
func WriteBalanceText(w io.Writer, balances []generic.Balance) error {
	var sb strings.Builder
	sb.WriteString("--- VIP Balance Calculation Report ---\n")
	for _, b := range balances {
		fmt.Fprintf(&sb, "User: %s\n", b.EntityID)
		fmt.Fprintf(&sb, "  Total Topup: %s\n", b.TotalTopup)
		fmt.Fprintf(&sb, "  Total Spent: %s\n", b.TotalSpent)
		fmt.Fprintf(&sb, "  Calculated:  %s\n", b.Calculated())
		fmt.Fprintf(&sb, "  File Balance:%s\n", b.Stored)
		fmt.Fprintf(&sb, "  Difference:  %s\n", b.Difference())
		sb.WriteString(strings.Repeat("-", reportSeparatorWidth) + "\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

type balanceReport struct {
	Customers       []customerReport `json:"customers"`
	TotalDifference generic.Amount   `json:"totalDifference"`
}

type customerReport struct {
	Customer    string         `json:"customer"`
	TotalTopup  generic.Amount `json:"totalTopup"`
	TotalSpent  generic.Amount `json:"totalSpent"`
	Calculated  generic.Amount `json:"calculated"`
	FileBalance generic.Amount `json:"fileBalance"`
	Difference  generic.Amount `json:"difference"`
}

// WriteBalanceJSON prints the report as a single JSON object.
func WriteBalanceJSON(w io.Writer, balances []generic.Balance) error {
	report := balanceReport{
		Customers:       make([]customerReport, 0, len(balances)),
		TotalDifference: generic.TotalDifference(balances),
	}
	for _, b := range balances {
		report.Customers = append(report.Customers, customerReport{
			Customer:    string(b.EntityID),
			TotalTopup:  b.TotalTopup,
			TotalSpent:  b.TotalSpent,
			Calculated:  b.Calculated(),
			FileBalance: b.Stored,
			Difference:  b.Difference(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
