/*
main.go - viphistory entry point

PURPOSE:
  Lists the runs recorded by vipbalance and vipreclassify, so a difference
  can be followed from one backup to the next.

COMMAND-LINE FLAGS:
  -history    SQLite run history database (required)
  -limit      Runs to list per kind (default: 10); 0 lists all
  -log-level  debug, info, warn (default), error

EXAMPLES:
  ./viphistory -history ./vip-history.db -limit 5

SEE ALSO:
  - app/history.go: Listing output
  - store/sqlite/sqlite.go: Storage
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/warp/vip-ledger/app"
	"github.com/warp/vip-ledger/config"
)

func main() {
	cfg, err := config.Parse("viphistory", os.Args[1:], os.LookupEnv, os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	env, closeHistory := app.NewEnv(cfg, os.Stdout, cfg.NewLogger(os.Stderr))
	err = app.RunHistory(context.Background(), env)
	closeHistory()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
