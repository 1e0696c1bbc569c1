package config_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vip-ledger/config"
)

func env(values map[string]string) config.LookupEnv {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := config.Parse("vipbalance", nil, env(nil), io.Discard)

	require.NoError(t, err)
	assert.Equal(t, config.DefaultSnapshotPath, cfg.SnapshotPath)
	assert.Equal(t, "", cfg.RulesPath)
	assert.Equal(t, "", cfg.HistoryPath)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.False(t, cfg.Apply)
}

func TestParse_Precedence(t *testing.T) {
	// GIVEN: Snapshot path set in env, flag and positional argument
	// WHEN: Parsed
	// THEN: Positional wins; other values come from flag over env

	lookup := env(map[string]string{
		config.EnvSnapshot:  "env.json",
		config.EnvRulesFile: "env-rules.yaml",
		config.EnvHistoryDB: "env.db",
		config.EnvLogLevel:  "debug",
	})

	cfg, err := config.Parse("vipbalance", []string{"-snapshot", "flag.json", "-history", "flag.db", "pos.json"}, lookup, io.Discard)

	require.NoError(t, err)
	assert.Equal(t, "pos.json", cfg.SnapshotPath)
	assert.Equal(t, "env-rules.yaml", cfg.RulesPath)
	assert.Equal(t, "flag.db", cfg.HistoryPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestParse_EnvSnapshot(t *testing.T) {
	cfg, err := config.Parse("vipreclassify", nil, env(map[string]string{config.EnvSnapshot: "env.json"}), io.Discard)

	require.NoError(t, err)
	assert.Equal(t, "env.json", cfg.SnapshotPath)
}

func TestParse_CommandFlags(t *testing.T) {
	cfg, err := config.Parse("vipbalance", []string{"-format", "json", "-apply"}, env(nil), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.Apply)

	cfg, err = config.Parse("vipreclassify", []string{"-dry-run"}, env(nil), io.Discard)
	require.NoError(t, err)
	assert.True(t, cfg.DryRun)

	cfg, err = config.Parse("viphistory", []string{"-limit", "3"}, env(nil), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Limit)

	_, err = config.Parse("vipreclassify", []string{"-apply"}, env(nil), io.Discard)
	assert.Error(t, err, "-apply belongs to vipbalance only")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"two positional paths", []string{"a.json", "b.json"}},
		{"unknown format", []string{"-format", "xml"}},
		{"bad log level", []string{"-log-level", "loud"}},
		{"empty snapshot", []string{"-snapshot", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse("vipbalance", tt.args, env(nil), io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestParse_Help(t *testing.T) {
	var out bytes.Buffer

	_, err := config.Parse("vipbalance", []string{"-h"}, env(nil), &out)

	assert.ErrorIs(t, err, config.ErrHelp)
	assert.Contains(t, out.String(), "-snapshot")
}

func TestConfig_NewLogger_RespectsLevel(t *testing.T) {
	var out bytes.Buffer
	cfg := &config.Config{LogLevel: slog.LevelWarn}

	logger := cfg.NewLogger(&out)
	logger.Info("hidden")
	logger.Warn("shown", "path", "backup.json")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "msg=shown")
	assert.Contains(t, out.String(), "path=backup.json")
}
