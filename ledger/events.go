/*
events.go - The four ledger event types

PURPOSE:
  Defines the immutable records that make up the credit ledger:

  CreditGrant       earn: a day of credit with a validity window
  ConsumptionRecord use: a debit allocated FIFO across grants
  ExpiryRecord      audit write-off of a lapsed remainder
  ReversalRecord    compensating event undoing a grant or consumption

CRITICAL INVARIANTS:
  1. APPEND-ONLY: none of these records is ever updated or deleted
  2. Grant: amount > 0 and expires_on > earned_on
  3. Consumption: sum of allocations == amount, each allocation within
     the grant's remaining balance at allocation time
  4. Corrections are ReversalRecords, never edits

WHY EXPLICIT ALLOCATIONS?
  A consumption names exactly which grants it drew from and by how much.
  That makes "remaining on grant X" a pure sum, keeps FIFO auditable, and
  removes any dependence on storage iteration order.

SEE ALSO:
  - store.go: persistence contract for these records
  - compoff: the engine that creates them
*/
package ledger

import (
	"fmt"
	"time"
)

// =============================================================================
// CREDIT GRANT - One earn event
// =============================================================================

// CreditGrant records one earned day of comp-off credit. Grants are
// created only by the accrual engine and never change afterwards.
type CreditGrant struct {
	ID         GrantID
	EmployeeID EmployeeID
	EarnedOn   Date   // the qualifying work date
	Amount     Amount // always positive
	ExpiresOn  Date   // last day the credit is usable, inclusive
	SourceNote string // e.g. "Earned by working on 2024-03-05"
	GrantedAt  time.Time
}

func (g CreditGrant) Validate() error {
	if !g.Amount.IsPositive() {
		return fmt.Errorf("grant %s: amount must be positive, got %s", g.ID, g.Amount)
	}
	if !g.ExpiresOn.After(g.EarnedOn) {
		return fmt.Errorf("grant %s: expires_on %s must be after earned_on %s",
			g.ID, g.ExpiresOn, g.EarnedOn)
	}
	return nil
}

// =============================================================================
// CONSUMPTION - One debit event with its FIFO allocations
// =============================================================================

// Allocation is one (grant, amount) pair inside a consumption.
type Allocation struct {
	GrantID GrantID
	Amount  Amount
}

// ConsumptionRecord records one approved debit against the employee's
// grants. The allocations are ordered oldest-grant-first, exactly as the
// resolver walked them.
type ConsumptionRecord struct {
	ID          ConsumptionID
	EmployeeID  EmployeeID
	ConsumedOn  Date
	Amount      Amount
	Allocations []Allocation
	ReferenceID string // the leave request this debit settles
	Note        string
	CreatedAt   time.Time
}

func (c ConsumptionRecord) Validate() error {
	if !c.Amount.IsPositive() {
		return fmt.Errorf("consumption %s: amount must be positive, got %s", c.ID, c.Amount)
	}
	total := ZeroDays()
	for _, a := range c.Allocations {
		if !a.Amount.IsPositive() {
			return fmt.Errorf("consumption %s: allocation on grant %s must be positive", c.ID, a.GrantID)
		}
		total = total.Add(a.Amount)
	}
	if !total.Equal(c.Amount) {
		return fmt.Errorf("consumption %s: allocations sum to %s, want %s", c.ID, total, c.Amount)
	}
	return nil
}

// =============================================================================
// EXPIRY - Audit write-off of a lapsed remainder
// =============================================================================

// ExpiryRecord marks the unconsumed remainder of a grant as forfeited on
// its expiry date. Expiry is always recomputable from grants and
// consumptions alone; these records exist for the audit trail, and the
// aggregator never depends on a sweep having written them.
type ExpiryRecord struct {
	ID         string
	EmployeeID EmployeeID
	GrantID    GrantID
	ExpiredOn  Date
	Amount     Amount
	CreatedAt  time.Time
}

// =============================================================================
// REVERSAL - Compensating event
// =============================================================================

type ReversalKind string

const (
	// ReversalConsumption undoes an entire consumption, restoring the
	// remainders of the grants it drew from. Used when an approved leave
	// is later cancelled.
	ReversalConsumption ReversalKind = "consumption_reversal"

	// ReversalGrant forfeits part of a grant's unconsumed remainder.
	// Used when attendance is corrected and the credit was never earned.
	ReversalGrant ReversalKind = "grant_revocation"
)

// ReversalRecord is the only correction mechanism in the ledger. The
// original record stays in place; the reversal carries the opposite
// effect and a reference to its target.
type ReversalRecord struct {
	ID          string
	EmployeeID  EmployeeID
	Kind        ReversalKind
	TargetID    string // GrantID or ConsumptionID depending on Kind
	Amount      Amount
	EffectiveOn Date
	Reason      string
	CreatedAt   time.Time
}
