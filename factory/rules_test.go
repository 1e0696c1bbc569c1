package factory_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vip-ledger/factory"
	"github.com/warp/vip-ledger/generic"
	"github.com/warp/vip-ledger/vip"
)

const rulesYAML = `
currency: "₫"
ignored_transactions:
  - 9310deae-d8f0-48c4-8dd0-b8031e44886d
policies:
  - customer: Kudo
    mode: all-except
    exceptions:
      - item: Phở bò
        date: "12-03"
      - item: Bánh ướt gà xé
  - customer: Tùng
    mode: all
`

func TestParseRules_YAML(t *testing.T) {
	rules, err := factory.ParseRules([]byte(rulesYAML), factory.FormatYAML)

	require.NoError(t, err)
	assert.Equal(t, "₫", rules.Currency)
	assert.Equal(t, []string{"9310deae-d8f0-48c4-8dd0-b8031e44886d"}, rules.IgnoredTransactions)
	require.Len(t, rules.Policies, 2)

	kudo := rules.Policies[0]
	assert.Equal(t, "Kudo", kudo.Customer)
	assert.Equal(t, vip.ModeAllExcept, kudo.Mode)
	require.Len(t, kudo.Exceptions, 2)
	require.NotNil(t, kudo.Exceptions[0].Date)
	assert.Equal(t, generic.MonthDay{Month: time.December, Day: 3}, *kudo.Exceptions[0].Date)
	assert.Nil(t, kudo.Exceptions[1].Date)

	assert.Equal(t, vip.ModeAll, rules.Policies[1].Mode)
}

func TestParseRules_JSON_DefaultsCurrency(t *testing.T) {
	raw := `{"policies": [{"customer": "a Duck", "mode": "all"}]}`

	rules, err := factory.ParseRules([]byte(raw), factory.FormatJSON)

	require.NoError(t, err)
	assert.Equal(t, vip.DefaultCurrency, rules.Currency)
	require.Len(t, rules.Policies, 1)
	assert.Equal(t, "a Duck", rules.Policies[0].Customer)
}

func TestParseRules_EmptyYAML(t *testing.T) {
	rules, err := factory.ParseRules(nil, factory.FormatYAML)

	require.NoError(t, err)
	assert.Empty(t, rules.Policies)
	assert.Equal(t, vip.DefaultCurrency, rules.Currency)
}

func TestParseRules_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		format factory.Format
	}{
		{"unknown YAML field", "policies:\n  - customer: Kudo\n    mode: all-except\n    exeptions: []\n", factory.FormatYAML},
		{"unknown JSON field", `{"polices": []}`, factory.FormatJSON},
		{"bad date", "policies:\n  - customer: Kudo\n    mode: all-except\n    exceptions:\n      - item: x\n        date: \"02-30\"\n", factory.FormatYAML},
		{"exception on all", "policies:\n  - customer: Kudo\n    mode: all\n    exceptions:\n      - item: x\n", factory.FormatYAML},
		{"duplicate customer", "policies:\n  - {customer: A, mode: all}\n  - {customer: A, mode: all}\n", factory.FormatYAML},
		{"malformed JSON", `{"policies": [`, factory.FormatJSON},
		{"unknown format", `{}`, factory.Format("toml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.ParseRules([]byte(tt.raw), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, factory.FormatJSON, factory.FormatFor("rules.json"))
	assert.Equal(t, factory.FormatJSON, factory.FormatFor("RULES.JSON"))
	assert.Equal(t, factory.FormatYAML, factory.FormatFor("rules.yaml"))
	assert.Equal(t, factory.FormatYAML, factory.FormatFor("rules.yml"))
	assert.Equal(t, factory.FormatYAML, factory.FormatFor("rules"))
}

func TestLoadRules_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rulesYAML), 0o644))

	rules, err := factory.LoadRules(path)

	require.NoError(t, err)
	assert.Len(t, rules.Policies, 2)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := factory.LoadRules(filepath.Join(t.TempDir(), "none.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading rules")
}
