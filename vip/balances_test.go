package vip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vip-ledger/generic"
	"github.com/warp/vip-ledger/vip"
)

func TestParseBalances(t *testing.T) {
	// GIVEN: vipList text with a blank line, a header without "=",
	//        padded names and a repeated customer
	// WHEN: Parsed
	// THEN: Names are trimmed, glyphs stripped, the last duplicate wins

	text := "Alice=250000đ\n\nVIP customers\n  Bob = 0 đ\nAlice=260000đ\na Dave=-5000đ"

	balances, err := vip.ParseBalances(text, vip.DefaultCurrency)

	require.NoError(t, err)
	require.Len(t, balances, 3)
	assert.Equal(t, "260000", balances["Alice"].String())
	assert.True(t, balances["Bob"].IsZero())
	assert.Equal(t, "-5000", balances["a Dave"].String())
}

func TestParseBalances_Empty(t *testing.T) {
	balances, err := vip.ParseBalances("", vip.DefaultCurrency)
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestParseBalances_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"two equals", "Alice=1=2đ"},
		{"not an integer", "Alice=abcđ"},
		{"decimal", "Alice=1.5đ"},
		{"empty amount", "Alice=đ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := vip.ParseBalances(tt.text, vip.DefaultCurrency)
			require.Error(t, err)
			assert.True(t, generic.IsParseError(err))
			assert.Contains(t, err.Error(), "vipList line 1")
		})
	}
}

func TestFormatBalances_RoundTrip(t *testing.T) {
	balances := map[generic.EntityID]generic.Amount{
		"Tùng":  generic.NewAmount(15000),
		"Alice": generic.NewAmount(300000),
	}

	text := vip.FormatBalances(balances, vip.DefaultCurrency)
	assert.Equal(t, "Alice=300000đ\nTùng=15000đ", text)

	parsed, err := vip.ParseBalances(text, vip.DefaultCurrency)
	require.NoError(t, err)
	assert.Equal(t, "300000", parsed["Alice"].String())
	assert.Equal(t, "15000", parsed["Tùng"].String())
}

func TestStripCurrency_CustomGlyph(t *testing.T) {
	assert.Equal(t, "1200", vip.StripCurrency(" $1200 ", "$"))
	assert.Equal(t, "1200đ", vip.StripCurrency("1200đ", ""))
}

func TestCustomerKey_Identity(t *testing.T) {
	assert.NotEqual(t, vip.CustomerKey("a Dave"), vip.CustomerKey("Dave"))
	assert.NotEqual(t, vip.CustomerKey("kudo"), vip.CustomerKey("Kudo"))
}
