/*
policies.go - Per-customer payment reclassification rules

PURPOSE:
  Some regular customers pay every order from store credit, but the web
  client did not always record it that way. A policy says, for one customer,
  which of their paid order lines should carry paymentMethod "vip".

MODES:
  all:         Every paid line of the customer is a VIP payment
  all-except:  Every paid line is a VIP payment, except lines of orders that
               match one of the customer's exceptions

EXCEPTIONS:
  An exception names an item (the order's itemName, compared exactly) and
  optionally a month/day. Without a date it matches every order of that item;
  with a date it matches only orders whose timestamp falls on that month and
  day, in any year.

CONFIGURATION:
  The table is data, not code. DefaultPolicies is the built-in table for the
  original deployment; factory.LoadRules reads a replacement from YAML/JSON.

SEE ALSO:
  - reclassify.go: Applies a PolicyTable to a snapshot
  - factory/rules.go: Declarative rules file
*/
package vip

import (
	"fmt"
	"time"

	"github.com/warp/vip-ledger/generic"
	"github.com/warp/vip-ledger/snapshot"
)

// =============================================================================
// POLICY TYPES
// =============================================================================

type Mode string

const (
	ModeAll       Mode = "all"
	ModeAllExcept Mode = "all-except"
)

type Exception struct {
	Item string
	Date *generic.MonthDay // nil matches every date
}

// Matches reports whether the order is covered by the exception. The order
// timestamp is only parsed when the item matches and a date filter is set;
// in that case a malformed timestamp is an error, never a non-match.
func (e Exception) Matches(order snapshot.Order) (bool, error) {
	if order.ItemName() != e.Item {
		return false, nil
	}
	if e.Date == nil {
		return true, nil
	}
	t, err := order.Time()
	if err != nil {
		return false, err
	}
	return e.Date.Matches(t), nil
}

type Policy struct {
	Customer   string
	Mode       Mode
	Exceptions []Exception
}

// Excludes reports whether the policy keeps the order's lines out of VIP.
func (p Policy) Excludes(order snapshot.Order) (bool, error) {
	if p.Mode != ModeAllExcept {
		return false, nil
	}
	for _, e := range p.Exceptions {
		matched, err := e.Matches(order)
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// PolicyTable is an ordered list of policies, one per customer. The order is
// the order of the reclassification summary.
type PolicyTable []Policy

// Lookup returns the policy for a customer display name.
func (t PolicyTable) Lookup(name string) (Policy, bool) {
	key := CustomerKey(name)
	for _, p := range t {
		if CustomerKey(p.Customer) == key {
			return p, true
		}
	}
	return Policy{}, false
}

// Validate checks the table is usable: known modes, one policy per customer,
// exceptions only where they have an effect.
func (t PolicyTable) Validate() error {
	seen := make(map[generic.EntityID]bool, len(t))
	for i, p := range t {
		if p.Customer == "" {
			return fmt.Errorf("policy %d: customer is required", i)
		}
		key := CustomerKey(p.Customer)
		if seen[key] {
			return fmt.Errorf("policy %q: duplicate customer", p.Customer)
		}
		seen[key] = true

		switch p.Mode {
		case ModeAll:
			if len(p.Exceptions) > 0 {
				return fmt.Errorf("policy %q: exceptions require mode %q", p.Customer, ModeAllExcept)
			}
		case ModeAllExcept:
			for j, e := range p.Exceptions {
				if e.Item == "" {
					return fmt.Errorf("policy %q: exception %d: item is required", p.Customer, j)
				}
			}
		default:
			return fmt.Errorf("policy %q: unknown mode %q", p.Customer, p.Mode)
		}
	}
	return nil
}

// =============================================================================
// RULE SET - Everything a deployment configures
// =============================================================================

type RuleSet struct {
	// Currency is the glyph stripped from vipList amounts.
	Currency string

	// IgnoredTransactions are ledger entry ids confirmed to be bogus
	// (e.g. a top-up recorded twice under different ids). They are dropped
	// before reconciliation.
	IgnoredTransactions []string

	Policies PolicyTable
}

// =============================================================================
// BUILT-IN TABLE
// =============================================================================

// DefaultRuleSet returns the built-in configuration.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Currency: DefaultCurrency,
		Policies: DefaultPolicies(),
	}
}

// DefaultPolicies returns the built-in reclassification table.
func DefaultPolicies() PolicyTable {
	dec3 := generic.MonthDay{Month: time.December, Day: 3}
	return PolicyTable{
		{
			Customer: "Kudo",
			Mode:     ModeAllExcept,
			Exceptions: []Exception{
				{Item: "Phở bò", Date: &dec3},
				{Item: "Bánh ướt gà xé"},
				{Item: "Bún thịt nướng"},
			},
		},
		{Customer: "Tùng", Mode: ModeAll},
		{Customer: "a Dave", Mode: ModeAll},
		{Customer: "a Duck", Mode: ModeAll},
	}
}
