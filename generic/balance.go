/*
balance.go - Balance derivation and comparison against a stored value

PURPOSE:
  Answers "what should this entity's balance be, and how far is the stored
  balance from it?" The calculated side is derived purely from events; the
  stored side is whatever the system of record currently claims.

BALANCE COMPONENTS:
  TotalTopup:  Credit added (sum of topup transactions)
  TotalSpent:  Consumption attributed to the entity
  Stored:      Balance currently recorded (zero when absent)

DERIVED VALUES:
  Calculated = TotalTopup - TotalSpent
  Difference = Calculated - Stored

  A positive difference means the stored balance is lower than the events
  justify; a negative one means the stored balance is higher.

MEMBERSHIP:
  Only members get a balance. Members are the union of entities with a stored
  balance and entities with at least one topup. An entity that only consumed
  is not a member and never appears, even though its consumption exists.

SEE ALSO:
  - ledger.go: Produces the topup and consumption totals
  - vip/reconcile.go: Domain adapter
*/
package generic

import "sort"

// =============================================================================
// BALANCE
// =============================================================================

type Balance struct {
	EntityID   EntityID
	TotalTopup Amount
	TotalSpent Amount
	Stored     Amount
}

// Calculated returns the balance implied by the events.
func (b Balance) Calculated() Amount {
	return b.TotalTopup.Sub(b.TotalSpent)
}

// Difference returns Calculated minus Stored.
func (b Balance) Difference() Amount {
	return b.Calculated().Sub(b.Stored)
}

// Consistent reports whether the stored balance matches the events.
func (b Balance) Consistent() bool {
	return b.Difference().IsZero()
}

// =============================================================================
// MEMBERSHIP
// =============================================================================

// Members returns the union of the key sets.
func Members(sets ...map[EntityID]Amount) map[EntityID]bool {
	members := make(map[EntityID]bool)
	for _, set := range sets {
		for id := range set {
			members[id] = true
		}
	}
	return members
}

// =============================================================================
// BALANCE SHEET - One Balance per member, deterministic order
// =============================================================================

// BuildBalances assembles a Balance for every member, sorted by EntityID.
// Missing totals count as zero.
func BuildBalances(members map[EntityID]bool, topups, spent, stored map[EntityID]Amount) []Balance {
	ids := make([]EntityID, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	balances := make([]Balance, 0, len(ids))
	for _, id := range ids {
		balances = append(balances, Balance{
			EntityID:   id,
			TotalTopup: valueOrZero(topups, id),
			TotalSpent: valueOrZero(spent, id),
			Stored:     valueOrZero(stored, id),
		})
	}
	return balances
}

// TotalDifference sums Difference over all balances.
func TotalDifference(balances []Balance) Amount {
	total := ZeroAmount()
	for _, b := range balances {
		total = total.Add(b.Difference())
	}
	return total
}

func valueOrZero(m map[EntityID]Amount, id EntityID) Amount {
	if v, ok := m[id]; ok {
		return v
	}
	return ZeroAmount()
}
