/*
reclassify.go - Payment method reclassifier

PURPOSE:
  Walks every order line and marks as paid-from-credit ("vip") the lines that
  the policy table says should have been, retroactively.

ALGORITHM (per order, per line):
  1. No policy for the line's customer  -> skip
  2. Line not paid                      -> skip
  3. all-except and order matches an exception -> skip
  4. paymentMethod != "vip"             -> set "vip", count it
     paymentMethod == "vip"             -> nothing (idempotent)

ALL OR NOTHING:
  Reclassification runs in two phases. Plan walks the whole snapshot and
  records what would change without touching it; only a plan that completed
  without error can be applied. A timestamp error halfway through therefore
  leaves the document exactly as loaded.

SEE ALSO:
  - policies.go: Policy and exception matching
  - snapshot/file.go: Atomic write-back of the applied document
*/
package vip

import (
	"github.com/warp/vip-ledger/generic"
	"github.com/warp/vip-ledger/snapshot"
)

// Update describes one line switched to VIP.
type Update struct {
	Customer   string
	Item       string
	Date       string // raw order timestamp
	OrderIndex int
	LineIndex  int
}

// Result summarizes a reclassification.
type Result struct {
	Updates []Update

	// Counts has one entry per policy, in table order, including zeros.
	Counts []generic.EntityCount
}

func (r Result) Total() int { return len(r.Updates) }

// Plan is a computed but not yet applied reclassification.
type Plan struct {
	lines  []snapshot.Line
	result Result
}

// Apply performs the planned mutations. Only paymentMethod is written.
func (p *Plan) Apply() {
	for _, line := range p.lines {
		line.SetPaymentMethod(PaymentMethodVIP)
	}
}

func (p *Plan) Result() Result { return p.result }

type Reclassifier struct {
	Policies PolicyTable
}

func NewReclassifier(policies PolicyTable) *Reclassifier {
	return &Reclassifier{Policies: policies}
}

// Plan computes the reclassification without modifying doc.
func (rc *Reclassifier) Plan(doc *snapshot.Document) (*Plan, error) {
	orders, err := doc.Orders()
	if err != nil {
		return nil, err
	}

	counts := make(map[generic.EntityID]int, len(rc.Policies))
	plan := &Plan{}

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
			policy, ok := rc.Policies.Lookup(name)
			if !ok || !line.Paid() {
				continue
			}
			excluded, err := policy.Excludes(order)
			if err != nil {
				return nil, err
			}
			if excluded || line.PaymentMethod() == PaymentMethodVIP {
				continue
			}

			plan.lines = append(plan.lines, line)
			plan.result.Updates = append(plan.result.Updates, Update{
				Customer:   name,
				Item:       order.ItemName(),
				Date:       order.Date(),
				OrderIndex: order.Index,
				LineIndex:  line.Index,
			})
			counts[CustomerKey(name)]++
		}
	}

	plan.result.Counts = make([]generic.EntityCount, 0, len(rc.Policies))
	for _, p := range rc.Policies {
		key := CustomerKey(p.Customer)
		plan.result.Counts = append(plan.result.Counts, generic.EntityCount{EntityID: key, Count: counts[key]})
	}
	return plan, nil
}

// Reclassify plans and applies in one step. On error doc is unchanged.
func (rc *Reclassifier) Reclassify(doc *snapshot.Document) (Result, error) {
	plan, err := rc.Plan(doc)
	if err != nil {
		return Result{}, err
	}
	plan.Apply()
	return plan.Result(), nil
}
