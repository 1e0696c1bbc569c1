/*
reconcile.go - Balance reconciler

PURPOSE:
  Recomputes every VIP customer's balance from the snapshot's raw events and
  compares it with the balance stored in vipList.

ALGORITHM:
  1. Drop ignored entry ids, then dedup vipTransactions by id (first wins)
  2. Sum "topup" entries per customer; every other type is ignored
  3. VIP set = customers in vipList ∪ customers with a topup
  4. Every paid order line of a VIP customer counts as spending, whatever
     its paymentMethod
  5. Calculated = topup - spent; Difference = Calculated - stored

SCOPE LIMITS:
  Customers who only appear in orders are not reported, even when their lines
  are tagged "vip". A paid line of a VIP counts as spending even if it was
  paid in cash.

SEE ALSO:
  - generic/ledger.go, generic/balance.go: The arithmetic
  - balances.go: vipList parsing
*/
package vip

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/warp/vip-ledger/generic"
	"github.com/warp/vip-ledger/snapshot"
)

type Reconciler struct {
	Currency string
	Ignored  map[generic.TransactionID]bool
}

// NewReconciler builds a reconciler from a rule set.
func NewReconciler(rules RuleSet) *Reconciler {
	currency := rules.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Reconciler{
		Currency: currency,
		Ignored:  IgnoredIDs(rules.IgnoredTransactions),
	}
}

// IgnoredIDs converts configured ids to transaction identities. A configured
// id matches a string id with that text and, when it is numeric, a number id.
func IgnoredIDs(ids []string) map[generic.TransactionID]bool {
	ignored := make(map[generic.TransactionID]bool, len(ids))
	for _, id := range ids {
		quoted, _ := json.Marshal(id)
		ignored[generic.TransactionID(quoted)] = true
		if _, err := strconv.ParseFloat(id, 64); err == nil {
			ignored[generic.TransactionID(id)] = true
		}
	}
	return ignored
}

type keyedEntry struct {
	id    generic.TransactionID
	entry snapshot.Entry
}

func entryID(k keyedEntry) generic.TransactionID { return k.id }

// Reconcile returns one balance per VIP customer, sorted by customer. Any
// read failure aborts with no partial result.
func (r *Reconciler) Reconcile(doc *snapshot.Document) ([]generic.Balance, error) {
	list, err := doc.VIPList()
	if err != nil {
		return nil, err
	}
	stored, err := ParseBalances(list, r.Currency)
	if err != nil {
		return nil, err
	}

	topups, err := r.topups(doc)
	if err != nil {
		return nil, err
	}

	members := generic.Members(stored, topups)

	spending, err := r.spending(doc, members)
	if err != nil {
		return nil, err
	}

	spent := generic.SumConsumption(spending, members)
	return generic.BuildBalances(members, topups, spent, stored), nil
}

func (r *Reconciler) topups(doc *snapshot.Document) (map[generic.EntityID]generic.Amount, error) {
	entries, err := doc.Entries()
	if err != nil {
		return nil, err
	}

	keyed := make([]keyedEntry, 0, len(entries))
	for _, e := range entries {
		id, err := e.ID()
		if err != nil {
			return nil, err
		}
		keyed = append(keyed, keyedEntry{id: id, entry: e})
	}
	keyed = generic.Exclude(keyed, entryID, r.Ignored)
	keyed = generic.DedupBy(keyed, entryID)

	txs := make([]generic.Transaction, 0, len(keyed))
	for _, k := range keyed {
		if generic.TransactionType(k.entry.Type()) != generic.TxTopup {
			continue
		}
		name, ok := k.entry.Name()
		if !ok {
			return nil, &generic.ParseError{
				Field: fmt.Sprintf("vipTransactions[%d].name", k.entry.Index),
				Err:   generic.ErrMissingField,
			}
		}
		amount, err := k.entry.Amount()
		if err != nil {
			return nil, err
		}
		txs = append(txs, generic.Transaction{
			ID:       k.id,
			EntityID: CustomerKey(name),
			Type:     generic.TxTopup,
			Delta:    amount,
		})
	}
	return generic.SumByEntity(txs, generic.TxTopup), nil
}

func (r *Reconciler) spending(doc *snapshot.Document, members map[generic.EntityID]bool) ([]generic.ConsumptionEvent, error) {
	orders, err := doc.Orders()
	if err != nil {
		return nil, err
	}

	var events []generic.ConsumptionEvent
	for _, order := range orders {
		lines, err := order.Lines()
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			name, ok := line.Name()
			if !ok {
				continue
			}
			customer := CustomerKey(name)
			if !members[customer] || !line.Paid() {
				continue
			}
			due, err := line.Due()
			if err != nil {
				return nil, err
			}
			events = append(events, generic.ConsumptionEvent{
				EntityID: customer,
				Amount:   due,
				Ref:      fmt.Sprintf("orderHistory[%d].details[%d]", line.OrderIndex, line.Index),
			})
		}
	}
	return events, nil
}
