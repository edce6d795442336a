/*
consume.go - The consumption resolver

PURPOSE:
  Allocates an approved debit against outstanding grants, oldest earn
  date first, splitting across grants as needed. The whole allocation
  succeeds or fails; no partial consumption is ever persisted.

FIFO ORDER:
  Candidates are sorted by (earned_on, id) ascending - the soonest-to-
  expire credit is spent first, which minimizes forfeiture. The id
  tie-break keeps the walk deterministic for grants earned the same day.

CONCURRENCY:
  Allocation is the one read-modify-append sequence in the system, so it
  is serialized per employee: a keyed mutex covers in-process callers,
  and the store's optimistic tail check covers everything else. On a
  tail conflict the resolver retries once on a fresh read, then surfaces
  ErrConflict for the caller to retry. Allocations for different
  employees proceed in parallel.
*/
package compoff

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rosterly/comp-ledger/ledger"
)

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver allocates debits against grants. It is the only writer of
// consumption records.
type Resolver struct {
	Store ledger.Store
	Now   func() time.Time

	mu    sync.Mutex
	locks map[ledger.EmployeeID]*sync.Mutex
}

func NewResolver(store ledger.Store) *Resolver {
	return &Resolver{
		Store: store,
		Now:   time.Now,
		locks: make(map[ledger.EmployeeID]*sync.Mutex),
	}
}

// lockFor returns the per-employee allocation lock.
func (r *Resolver) lockFor(id ledger.EmployeeID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	return l
}

// Allocate consumes the requested amount on the given date, drawing
// FIFO from the employee's spendable grants. Fails atomically with
// InsufficientBalanceError when the unexpired remainders do not cover
// the request.
func (r *Resolver) Allocate(ctx context.Context, employeeID ledger.EmployeeID, consumedOn ledger.Date, amount ledger.Amount, referenceID, note string) (*ledger.ConsumptionRecord, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("allocate: amount must be positive, got %s", amount)
	}

	lock := r.lockFor(employeeID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := r.allocateOnce(ctx, employeeID, consumedOn, amount, referenceID, note)
	if errors.Is(err, ledger.ErrConcurrentModification) {
		rec, err = r.allocateOnce(ctx, employeeID, consumedOn, amount, referenceID, note)
		if errors.Is(err, ledger.ErrConcurrentModification) {
			return nil, ledger.ErrConflict
		}
	}
	return rec, err
}

func (r *Resolver) allocateOnce(ctx context.Context, employeeID ledger.EmployeeID, consumedOn ledger.Date, amount ledger.Amount, referenceID, note string) (*ledger.ConsumptionRecord, error) {
	v, seq, err := LoadView(ctx, r.Store, employeeID)
	if err != nil {
		return nil, err
	}

	candidates := v.SpendableGrants(consumedOn)

	available := ledger.ZeroDays()
	for _, g := range candidates {
		available = available.Add(v.RemainingAt(g, consumedOn))
	}
	if available.LessThan(amount) {
		return nil, &ledger.InsufficientBalanceError{
			EmployeeID: employeeID,
			Requested:  amount,
			Available:  available,
		}
	}

	var allocations []ledger.Allocation
	left := amount
	for _, g := range candidates {
		if left.IsZero() {
			break
		}
		take := v.RemainingAt(g, consumedOn).Min(left)
		allocations = append(allocations, ledger.Allocation{GrantID: g.ID, Amount: take})
		left = left.Sub(take)
	}

	rec := ledger.ConsumptionRecord{
		ID:          ledger.ConsumptionID(uuid.NewString()),
		EmployeeID:  employeeID,
		ConsumedOn:  consumedOn,
		Amount:      amount,
		Allocations: allocations,
		ReferenceID: referenceID,
		Note:        note,
		CreatedAt:   r.Now().UTC(),
	}
	if err := r.Store.AppendConsumption(ctx, rec, seq); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ReverseConsumption compensates an entire consumption, releasing its
// allocations back to the grants they came from. Used when an approved
// leave is cancelled after the fact. Restored credit on a since-expired
// grant is immediately forfeit again; the arithmetic takes care of it.
// An advisory sweep can advance the ledger tail between the read and
// the append, so the write gets the same retry-once treatment as
// Allocate.
func (r *Resolver) ReverseConsumption(ctx context.Context, employeeID ledger.EmployeeID, consumptionID ledger.ConsumptionID, reason string) (*ledger.ReversalRecord, error) {
	lock := r.lockFor(employeeID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := r.reverseOnce(ctx, employeeID, consumptionID, reason)
	if errors.Is(err, ledger.ErrConcurrentModification) {
		rec, err = r.reverseOnce(ctx, employeeID, consumptionID, reason)
		if errors.Is(err, ledger.ErrConcurrentModification) {
			return nil, ledger.ErrConflict
		}
	}
	return rec, err
}

func (r *Resolver) reverseOnce(ctx context.Context, employeeID ledger.EmployeeID, consumptionID ledger.ConsumptionID, reason string) (*ledger.ReversalRecord, error) {
	v, seq, err := LoadView(ctx, r.Store, employeeID)
	if err != nil {
		return nil, err
	}

	var target *ledger.ConsumptionRecord
	for i := range v.Consumptions {
		if v.Consumptions[i].ID == consumptionID {
			target = &v.Consumptions[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: consumption %s", ledger.ErrRecordNotFound, consumptionID)
	}
	if v.IsReversed(consumptionID) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrAlreadyReversed, consumptionID)
	}

	rec := ledger.ReversalRecord{
		ID:          uuid.NewString(),
		EmployeeID:  employeeID,
		Kind:        ledger.ReversalConsumption,
		TargetID:    string(consumptionID),
		Amount:      target.Amount,
		EffectiveOn: ledger.DateOf(r.Now().UTC()),
		Reason:      reason,
		CreatedAt:   r.Now().UTC(),
	}
	if err := r.Store.AppendReversal(ctx, rec, seq); err != nil {
		return nil, err
	}
	return &rec, nil
}
