/*
Package app wires configuration, the snapshot file, the VIP core and the run
history into the two commands.

PURPOSE:
  Keeps cmd/ mains down to flag parsing and exit codes. Everything a command
  does between "config parsed" and "exit" lives here and writes to plain
  io.Writers, so it can be tested without a process.

FLOW (both commands):
  1. Resolve rules (rules file or built-in table, currency override)
  2. snapshot.Load
  3. Run the core (vip.Reconciler or vip.Reclassifier)
  4. Render to stdout
  5. Persist the snapshot when the command writes
  6. Record the run in the history store, if one is configured

HISTORY FAILURES:
  Opening or writing the history store never fails a command. The report is
  already on stdout by then; the failure is logged at warn level.

SEE ALSO:
  - balance.go: vipbalance
  - reclassify.go: vipreclassify
*/
package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/warp/vip-ledger/config"
	"github.com/warp/vip-ledger/factory"
	"github.com/warp/vip-ledger/generic"
	"github.com/warp/vip-ledger/store/sqlite"
	"github.com/warp/vip-ledger/vip"
)

// Env holds a command's collaborators.
type Env struct {
	Config *config.Config
	Stdout io.Writer
	Logger *slog.Logger

	// History is nil when no history database is configured.
	History generic.HistoryStore

	Now   func() time.Time
	NewID func() string
}

// NewEnv builds an Env for cfg, opening the history database when one is
// configured. The returned close func is never nil.
func NewEnv(cfg *config.Config, stdout io.Writer, logger *slog.Logger) (*Env, func()) {
	env := &Env{
		Config: cfg,
		Stdout: stdout,
		Logger: logger,
		Now:    time.Now,
		NewID:  uuid.NewString,
	}
	closeFn := func() {}

	if cfg.HistoryPath != "" {
		store, err := sqlite.New(cfg.HistoryPath)
		if err != nil {
			logger.Warn("history disabled", "path", cfg.HistoryPath, "error", err)
		} else {
			env.History = store
			closeFn = func() {
				if err := store.Close(); err != nil {
					logger.Warn("closing history", "error", err)
				}
			}
		}
	}
	return env, closeFn
}

// LoadRules resolves the rule set for a run.
func LoadRules(cfg *config.Config) (vip.RuleSet, error) {
	rules := vip.DefaultRuleSet()
	if cfg.RulesPath != "" {
		var err error
		if rules, err = factory.LoadRules(cfg.RulesPath); err != nil {
			return vip.RuleSet{}, err
		}
	}
	if cfg.Currency != "" {
		rules.Currency = cfg.Currency
	}
	return rules, nil
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Env) newID() string {
	if e.NewID == nil {
		return uuid.NewString()
	}
	return e.NewID()
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}

func (e *Env) recordReconciliation(ctx context.Context, balances []generic.Balance) {
	if e.History == nil {
		return
	}
	run := generic.ReconciliationRun{
		ID:           e.newID(),
		SnapshotPath: e.Config.SnapshotPath,
		RanAt:        e.now(),
		Balances:     balances,
	}
	if err := e.History.SaveReconciliationRun(ctx, run); err != nil {
		e.logger().Warn("recording reconciliation run", "error", err)
		return
	}
	e.logger().Debug("reconciliation run recorded", "id", run.ID, "customers", len(balances))
}

func (e *Env) recordReclassification(ctx context.Context, result vip.Result, dryRun bool) {
	if e.History == nil {
		return
	}
	run := generic.ReclassificationRun{
		ID:           e.newID(),
		SnapshotPath: e.Config.SnapshotPath,
		RanAt:        e.now(),
		DryRun:       dryRun,
		Counts:       result.Counts,
	}
	if err := e.History.SaveReclassificationRun(ctx, run); err != nil {
		e.logger().Warn("recording reclassification run", "error", err)
		return
	}
	e.logger().Debug("reclassification run recorded", "id", run.ID, "total", run.Total())
}
