/*
Package generic provides the domain-agnostic ledger engine.

PURPOSE:
  This package contains the types and algorithms that turn a raw list of
  ledger entries and spending events into per-entity balances. It knows
  nothing about snapshots, VIP lists or payment methods; the vip package
  adapts those onto these types.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: An exact monetary quantity in the smallest currency unit
  - Transaction: One ledger entry (top-up, adjustment, ...)
  - EntityID / TransactionID: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so sums never drift
  2. Immutability: Transactions are values, the engine never edits them
  3. Type Safety: Strong typing for IDs prevents mixing customer/entry IDs

USAGE:
  tx := generic.Transaction{
      ID:       "1",
      EntityID: "Alice",
      Type:     generic.TxTopup,
      Delta:    generic.NewAmount(500000),
  }

SEE ALSO:
  - ledger.go: Deduplication and per-entity sums
  - balance.go: Balance derivation and comparison
  - errors.go: Load / parse / write error taxonomy
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Exact money value in the smallest currency unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
}

func NewAmount(value int64) Amount {
	return Amount{Value: decimal.NewFromInt(value)}
}

// ParseAmount parses the textual form of a number (as found in JSON).
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{Value: d}, nil
}

func ZeroAmount() Amount { return Amount{Value: decimal.Zero} }

func (a Amount) Add(b Amount) Amount       { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount       { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Neg() Amount               { return Amount{Value: a.Value.Neg()} }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) IsNegative() bool          { return a.Value.IsNegative() }
func (a Amount) Equal(b Amount) bool       { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }
func (a Amount) String() string            { return a.Value.String() }

// MarshalJSON renders the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Value.String()), nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EntityID identifies whoever owns a balance. For the VIP ledger this is the
// customer's display name after vip.CustomerKey.
type EntityID string

// TransactionID is the identity used for deduplication. Two IDs that render
// to different JSON (1 vs "1") are different transactions.
type TransactionID string

// =============================================================================
// TRANSACTION - One ledger entry
// =============================================================================

type TransactionType string

const (
	TxTopup      TransactionType = "topup"      // Credit bought by the customer
	TxCashout    TransactionType = "cashout"    // Credit returned as cash
	TxOrder      TransactionType = "order"      // Credit spent on an order
	TxOpening    TransactionType = "opening"    // Opening balance carried from elsewhere
	TxAdjustment TransactionType = "adjustment" // Manual correction
)

type Transaction struct {
	ID       TransactionID
	EntityID EntityID
	Type     TransactionType
	Delta    Amount
}

// =============================================================================
// CONSUMPTION EVENT - Spending attributed to an entity
// =============================================================================

type ConsumptionEvent struct {
	EntityID EntityID
	Amount   Amount
	Ref      string
}
