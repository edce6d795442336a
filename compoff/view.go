/*
Package compoff implements the compensatory-time credit engine: accrual,
FIFO consumption, deterministic expiry and the balance projections the
workforce screens consume.

PURPOSE:
  Credits are earned by working a non-scheduled day, carry a fixed
  validity window, are spent oldest-first, and lapse silently when the
  window closes. This package turns the append-only ledger into those
  semantics with pure derivation functions - nothing here keeps a
  mutable balance.

COMPONENTS:
  view.go      read-side projection of one employee's ledger
  accrual.go   grant creation (earn) and grant revocation
  consume.go   FIFO allocation of debits across grants
  expiry.go    advisory expiry sweep
  aggregate.go summary and monthly-breakdown projections
  request.go   earn-request approval workflow

SEE ALSO:
  - ledger: the event types and store contract
*/
package compoff

import (
	"context"

	"github.com/rosterly/comp-ledger/ledger"
)

// =============================================================================
// VIEW - One employee's ledger, loaded and indexed for derivation
// =============================================================================

// View is a consistent read of one employee's ledger with the
// compensating events already folded in:
//
//   - a grant revocation reduces the grant's effective amount
//   - a consumption reversal removes the consumption and releases its
//     allocations
//
// Everything the resolvers and the aggregator compute is a pure function
// of a View and an as-of date.
type View struct {
	EmployeeID   ledger.EmployeeID
	Grants       []ledger.CreditGrant       // FIFO order: (earned_on, id)
	Consumptions []ledger.ConsumptionRecord // (consumed_on, id)
	Expiries     []ledger.ExpiryRecord
	Reversals    []ledger.ReversalRecord

	revokedByGrant   map[ledger.GrantID]ledger.Amount
	allocatedByGrant map[ledger.GrantID]ledger.Amount
	reversedCons     map[ledger.ConsumptionID]bool
}

// LoadView reads the employee's full ledger. The returned sequence is
// the value observed BEFORE the reads; passing it to an append
// guarantees the write fails if anything landed in between.
func LoadView(ctx context.Context, store ledger.Store, employeeID ledger.EmployeeID) (*View, int64, error) {
	seq, err := store.LedgerSeq(ctx, employeeID)
	if err != nil {
		return nil, 0, err
	}

	grants, err := store.Grants(ctx, employeeID)
	if err != nil {
		return nil, 0, err
	}
	consumptions, err := store.Consumptions(ctx, employeeID)
	if err != nil {
		return nil, 0, err
	}
	expiries, err := store.Expiries(ctx, employeeID)
	if err != nil {
		return nil, 0, err
	}
	reversals, err := store.Reversals(ctx, employeeID)
	if err != nil {
		return nil, 0, err
	}

	v := &View{
		EmployeeID:       employeeID,
		Grants:           grants,
		Consumptions:     consumptions,
		Expiries:         expiries,
		Reversals:        reversals,
		revokedByGrant:   make(map[ledger.GrantID]ledger.Amount),
		allocatedByGrant: make(map[ledger.GrantID]ledger.Amount),
		reversedCons:     make(map[ledger.ConsumptionID]bool),
	}

	for _, r := range reversals {
		switch r.Kind {
		case ledger.ReversalGrant:
			id := ledger.GrantID(r.TargetID)
			v.revokedByGrant[id] = v.revokedByGrant[id].Add(r.Amount)
		case ledger.ReversalConsumption:
			v.reversedCons[ledger.ConsumptionID(r.TargetID)] = true
		}
	}

	for _, c := range consumptions {
		if v.reversedCons[c.ID] {
			continue
		}
		for _, a := range c.Allocations {
			v.allocatedByGrant[a.GrantID] = v.allocatedByGrant[a.GrantID].Add(a.Amount)
		}
	}

	return v, seq, nil
}

// EffectiveAmount returns the grant's amount net of revocations.
func (v *View) EffectiveAmount(g ledger.CreditGrant) ledger.Amount {
	return g.Amount.Sub(v.revokedByGrant[g.ID])
}

// Allocated returns how much of the grant has been consumed, net of
// reversed consumptions.
func (v *View) Allocated(id ledger.GrantID) ledger.Amount {
	return v.allocatedByGrant[id]
}

// IsReversed reports whether a consumption has been compensated.
func (v *View) IsReversed(id ledger.ConsumptionID) bool {
	return v.reversedCons[id]
}

// Remainder is the grant's unconsumed balance, with no expiry applied.
// This is what a sweep writes off when the grant lapses.
func (v *View) Remainder(g ledger.CreditGrant) ledger.Amount {
	return v.EffectiveAmount(g).Sub(v.Allocated(g.ID)).Max(ledger.ZeroDays())
}

// RemainingAt is the expiry resolver: the grant's usable balance as of
// a date. The remainder is forfeited once asOf is past expires_on; the
// expiry day itself is still fully usable.
func (v *View) RemainingAt(g ledger.CreditGrant, asOf ledger.Date) ledger.Amount {
	if asOf.After(g.ExpiresOn) {
		return ledger.ZeroDays()
	}
	return v.Remainder(g)
}

// SpendableGrants returns the grants a debit on the given date may draw
// from, in FIFO order: earned on or before the date, not yet expired,
// with remaining balance.
func (v *View) SpendableGrants(on ledger.Date) []ledger.CreditGrant {
	var out []ledger.CreditGrant
	for _, g := range v.Grants {
		if g.EarnedOn.After(on) {
			continue
		}
		if v.RemainingAt(g, on).IsPositive() {
			out = append(out, g)
		}
	}
	return out
}

// =============================================================================
// TOTALS - Inputs to the summary projection
// =============================================================================

// EarnedThrough sums effective grant amounts earned on or before asOf.
func (v *View) EarnedThrough(asOf ledger.Date) ledger.Amount {
	total := ledger.ZeroDays()
	for _, g := range v.Grants {
		if g.EarnedOn.BeforeOrEqual(asOf) {
			total = total.Add(v.EffectiveAmount(g))
		}
	}
	return total
}

// UsedThrough sums non-reversed consumption amounts on or before asOf.
func (v *View) UsedThrough(asOf ledger.Date) ledger.Amount {
	total := ledger.ZeroDays()
	for _, c := range v.Consumptions {
		if v.reversedCons[c.ID] {
			continue
		}
		if c.ConsumedOn.BeforeOrEqual(asOf) {
			total = total.Add(c.Amount)
		}
	}
	return total
}

// ExpiredThrough sums the forfeited remainders of grants whose expiry
// day has passed as of asOf. Purely derived; never read from the
// advisory expiry records.
func (v *View) ExpiredThrough(asOf ledger.Date) ledger.Amount {
	total := ledger.ZeroDays()
	for _, g := range v.Grants {
		if asOf.After(g.ExpiresOn) {
			total = total.Add(v.Remainder(g))
		}
	}
	return total
}
