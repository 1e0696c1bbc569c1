/*
main.go - vipreclassify entry point

PURPOSE:
  Marks as paid-from-credit ("vip") the paid order lines of customers in the
  reclassification table, then writes the snapshot back in place.

SEQUENCE:
  1. Parse flags and environment
  2. Open the run history, if configured
  3. Plan the changes over the whole snapshot
  4. Apply and save atomically (skipped with -dry-run)
  5. Print the per-customer summary

COMMAND-LINE FLAGS:
  -snapshot   Snapshot JSON path (default: backup.json); a positional
              argument takes precedence
  -rules      Rules file (YAML or JSON); built-in table when empty
  -history    SQLite run history database; disabled when empty
  -currency   Currency glyph (unused by this command, accepted for symmetry)
  -dry-run    Print the changes without writing the snapshot
  -log-level  debug, info, warn (default), error

EXAMPLES:
  ./vipreclassify backup.json
  ./vipreclassify -dry-run -rules ./rules.yaml backup.json

EXIT STATUS:
  0 on success; 1 after printing "❌ Error: <message>". The snapshot is
  untouched on failure.

SEE ALSO:
  - app/reclassify.go: Orchestration and summary output
  - vip/reclassify.go: Plan / Apply
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
	cfg, err := config.Parse("vipreclassify", os.Args[1:], os.LookupEnv, os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := cfg.NewLogger(os.Stderr)
	env, closeHistory := app.NewEnv(cfg, os.Stdout, logger)
	defer closeHistory()

	return app.RunReclassify(ctx, env)
}
