package vip_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vip-ledger/generic"
	"github.com/warp/vip-ledger/vip"
)

func TestDefaultPolicies_Valid(t *testing.T) {
	table := vip.DefaultPolicies()

	require.NoError(t, table.Validate())
	require.Len(t, table, 4)

	kudo, ok := table.Lookup("Kudo")
	require.True(t, ok)
	assert.Equal(t, vip.ModeAllExcept, kudo.Mode)
	require.Len(t, kudo.Exceptions, 3)
	require.NotNil(t, kudo.Exceptions[0].Date)
	assert.Equal(t, generic.MonthDay{Month: time.December, Day: 3}, *kudo.Exceptions[0].Date)

	_, ok = table.Lookup("Dave")
	assert.False(t, ok)
}

func TestPolicyTable_Validate(t *testing.T) {
	tests := []struct {
		name  string
		table vip.PolicyTable
		msg   string
	}{
		{
			name:  "missing customer",
			table: vip.PolicyTable{{Mode: vip.ModeAll}},
			msg:   "customer is required",
		},
		{
			name:  "duplicate customer",
			table: vip.PolicyTable{{Customer: "A", Mode: vip.ModeAll}, {Customer: "A", Mode: vip.ModeAll}},
			msg:   "duplicate customer",
		},
		{
			name:  "exceptions on all",
			table: vip.PolicyTable{{Customer: "A", Mode: vip.ModeAll, Exceptions: []vip.Exception{{Item: "x"}}}},
			msg:   "exceptions require mode",
		},
		{
			name:  "exception without item",
			table: vip.PolicyTable{{Customer: "A", Mode: vip.ModeAllExcept, Exceptions: []vip.Exception{{}}}},
			msg:   "item is required",
		},
		{
			name:  "unknown mode",
			table: vip.PolicyTable{{Customer: "A", Mode: "some"}},
			msg:   "unknown mode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
