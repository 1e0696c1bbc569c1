// Package config resolves command configuration from flags, the environment
// and the positional snapshot argument.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	DefaultSnapshotPath = "backup.json"
	DefaultLogLevel     = "warn"
	DefaultHistoryLimit = 10
)

// Environment variables consulted when a flag is not given.
const (
	EnvSnapshot  = "VIP_SNAPSHOT"
	EnvRulesFile = "VIP_RULES_FILE"
	EnvHistoryDB = "VIP_HISTORY_DB"
	EnvCurrency  = "VIP_CURRENCY"
	EnvLogLevel  = "VIP_LOG_LEVEL"
)

type Config struct {
	SnapshotPath string
	RulesPath    string // empty: built-in rules
	HistoryPath  string // empty: no history
	Currency     string // empty: from rules
	LogLevel     slog.Level

	// vipbalance
	Format string // "text" or "json"
	Apply  bool

	// vipreclassify
	DryRun bool

	// viphistory
	Limit int
}

// LookupEnv matches os.LookupEnv so tests can pass a map-backed lookup.
type LookupEnv func(key string) (string, bool)

// ErrHelp is returned when -h or -help was requested.
var ErrHelp = flag.ErrHelp

// Parse builds a Config for the named command. Precedence, highest first:
// positional argument (snapshot path only), flag, environment, default.
func Parse(command string, args []string, lookup LookupEnv, output io.Writer) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	getEnv := func(key, fallback string) string {
		if value, ok := lookup(key); ok {
			return value
		}
		return fallback
	}

	cfg := &Config{}
	var logLevel string

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.SnapshotPath, "snapshot", getEnv(EnvSnapshot, DefaultSnapshotPath), "snapshot JSON path")
	fs.StringVar(&cfg.RulesPath, "rules", getEnv(EnvRulesFile, ""), "rules file (YAML or JSON); built-in rules when empty")
	fs.StringVar(&cfg.HistoryPath, "history", getEnv(EnvHistoryDB, ""), "SQLite run history database; disabled when empty")
	fs.StringVar(&cfg.Currency, "currency", getEnv(EnvCurrency, ""), "currency glyph stripped from vipList amounts")
	fs.StringVar(&logLevel, "log-level", getEnv(EnvLogLevel, DefaultLogLevel), "log level: debug, info, warn, error")

	switch command {
	case "vipbalance":
		fs.StringVar(&cfg.Format, "format", "text", "report format: text or json")
		fs.BoolVar(&cfg.Apply, "apply", false, "rewrite vipList with the calculated balances")
	case "vipreclassify":
		fs.BoolVar(&cfg.DryRun, "dry-run", false, "report changes without writing the snapshot")
	case "viphistory":
		fs.IntVar(&cfg.Limit, "limit", DefaultHistoryLimit, "runs to list per kind; 0 lists all")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.SnapshotPath = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected at most one snapshot path, got %d", fs.NArg())
	}

	if cfg.SnapshotPath == "" {
		return nil, errors.New("snapshot path is required")
	}
	if cfg.Format != "" && cfg.Format != "text" && cfg.Format != "json" {
		return nil, fmt.Errorf("unknown format %q", cfg.Format)
	}

	level, err := parseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// NewLogger returns the diagnostics logger. Reports go to stdout; logs go
// to w (stderr in the commands).
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}
