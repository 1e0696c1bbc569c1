/*
main.go - vipbalance entry point

PURPOSE:
  Recomputes every VIP customer's balance from a snapshot backup and prints
  how far it is from the balance stored in the snapshot's vipList.

SEQUENCE:
  1. Parse flags and environment
  2. Open the run history, if configured
  3. Reconcile and print the report
  4. Optionally rewrite vipList (-apply)

COMMAND-LINE FLAGS:
  -snapshot   Snapshot JSON path (default: backup.json); a positional
              argument takes precedence
  -rules      Rules file (YAML or JSON); built-in rules when empty
  -history    SQLite run history database; disabled when empty
  -currency   Currency glyph stripped from vipList amounts
  -format     text (default) or json
  -apply      Rewrite vipList with the calculated balances
  -log-level  debug, info, warn (default), error

ENVIRONMENT:
  VIP_SNAPSHOT, VIP_RULES_FILE, VIP_HISTORY_DB, VIP_CURRENCY, VIP_LOG_LEVEL
  are used when the matching flag is not given.

EXAMPLES:
  ./vipbalance backup.json
  ./vipbalance -format json -history ./vip-history.db backup.json

EXIT STATUS:
  0 on success; 1 after printing "Error: <message>".

SEE ALSO:
  - app/balance.go: Report orchestration and rendering
  - vip/reconcile.go: The reconciliation itself
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/warp/vip-ledger/app"
	"github.com/warp/vip-ledger/config"
)

func main() {
	cfg, err := config.Parse("vipbalance", os.Args[1:], os.LookupEnv, os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := cfg.NewLogger(os.Stderr)
	env, closeHistory := app.NewEnv(cfg, os.Stdout, logger)
	defer closeHistory()

	return app.RunBalance(ctx, env)
}
