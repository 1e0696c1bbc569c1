/*
ledger.go - Deduplication and aggregation over a transaction log

PURPOSE:
  The transaction log is the source of truth for credit added to a balance.
  Logs exported from client devices can contain the same entry more than
  once (sync retries, restored backups), so every aggregation starts from a
  deduplicated view.

CRITICAL INVARIANTS:
  1. IDENTITY: Transaction IDs are unique; duplicates are the same event
  2. FIRST WINS: When an ID repeats, the first occurrence is kept and every
     later occurrence is dropped, whatever its type or amount
  3. ORDER: Dedup preserves the relative order of the surviving entries

EXAMPLE:
  log:     [{id:1 topup 500000}, {id:1 topup 999}, {id:2 cashout -100}]
  dedup:   [{id:1 topup 500000}, {id:2 cashout -100}]
  topups:  {Alice: 500000}

SEE ALSO:
  - balance.go: Combines topups with consumption into balances
  - vip/reconcile.go: Feeds snapshot entries into these functions
*/
package generic

// =============================================================================
// DEDUPLICATION
// =============================================================================

// Dedup returns txs with every repeated ID removed, keeping the first
// occurrence. The input slice is not modified.
func Dedup(txs []Transaction) []Transaction {
	return DedupBy(txs, func(tx Transaction) TransactionID { return tx.ID })
}

// DedupBy is Dedup for any record that carries a transaction ID. Callers that
// only parse the surviving records (amounts, names) dedup raw records first.
func DedupBy[T any](items []T, id func(T) TransactionID) []T {
	seen := make(map[TransactionID]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		key := id(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Exclude drops every record whose ID is in ignored.
func Exclude[T any](items []T, id func(T) TransactionID, ignored map[TransactionID]bool) []T {
	if len(ignored) == 0 {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if ignored[id(item)] {
			continue
		}
		out = append(out, item)
	}
	return out
}

// =============================================================================
// AGGREGATION
// =============================================================================

// SumByEntity totals Delta per entity for transactions of the given type.
// Transactions of any other type contribute nothing.
func SumByEntity(txs []Transaction, typ TransactionType) map[EntityID]Amount {
	totals := make(map[EntityID]Amount)
	for _, tx := range txs {
		if tx.Type != typ {
			continue
		}
		current, ok := totals[tx.EntityID]
		if !ok {
			current = ZeroAmount()
		}
		totals[tx.EntityID] = current.Add(tx.Delta)
	}
	return totals
}

// SumConsumption totals consumption per entity, restricted to members.
func SumConsumption(events []ConsumptionEvent, members map[EntityID]bool) map[EntityID]Amount {
	totals := make(map[EntityID]Amount)
	for _, e := range events {
		if !members[e.EntityID] {
			continue
		}
		current, ok := totals[e.EntityID]
		if !ok {
			current = ZeroAmount()
		}
		totals[e.EntityID] = current.Add(e.Amount)
	}
	return totals
}
