/*
accrual.go - The accrual engine

PURPOSE:
  Turns a qualifying work day into a credit grant with a deterministic
  validity window, and handles the compensating revocation when
  attendance is later corrected.

EXPIRY RULE:
  A credit earned in month M is usable through the end of month M+1.
  ExpiryOf is a pure function of the earn date so recomputation always
  reproduces the same window.

DUPLICATE ACCRUAL:
  One work date earns at most one active grant per employee. A second
  accrual for the same date is rejected with DuplicateAccrualError. A
  grant that has been fully revoked no longer blocks the date.
*/
package compoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rosterly/comp-ledger/ledger"
)

// GrantDays is the credit earned per qualifying work day.
var GrantDays = ledger.DaysFromInt(1)

// ExpiryOf returns the last usable day for a credit earned on the given
// date: the end of the calendar month following the earn month.
//
//	earned 2024-01-10 -> expires 2024-02-29
//	earned 2024-03-05 -> expires 2024-04-30
func ExpiryOf(earnedOn ledger.Date) ledger.Date {
	return earnedOn.StartOfMonth().AddMonths(2).AddDays(-1)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine creates credit grants. It is the only writer of grants.
type Engine struct {
	Store     ledger.Store
	Employees ledger.EmployeeStore
	Now       func() time.Time
}

func NewEngine(store ledger.Store, employees ledger.EmployeeStore) *Engine {
	return &Engine{Store: store, Employees: employees, Now: time.Now}
}

// ActiveGrantOn returns the grant already covering the work date, if one
// exists with any unrevoked amount.
func (e *Engine) ActiveGrantOn(ctx context.Context, employeeID ledger.EmployeeID, earnedOn ledger.Date) (ledger.GrantID, bool, error) {
	v, _, err := LoadView(ctx, e.Store, employeeID)
	if err != nil {
		return "", false, err
	}
	for _, g := range v.Grants {
		if g.EarnedOn.Equal(earnedOn) && v.EffectiveAmount(g).IsPositive() {
			return g.ID, true, nil
		}
	}
	return "", false, nil
}

// EnsureEmployee fails with ErrEmployeeNotFound for unknown IDs.
func (e *Engine) EnsureEmployee(ctx context.Context, id ledger.EmployeeID) error {
	if e.Employees == nil {
		return nil
	}
	emp, err := e.Employees.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if emp == nil {
		return fmt.Errorf("%w: %s", ledger.ErrEmployeeNotFound, id)
	}
	return nil
}

// EarnCredit appends exactly one grant for the qualifying work date.
// The caller has already validated, against the external schedule, that
// the employee actually worked outside their regular shift on that day;
// once written, the grant is authoritative.
func (e *Engine) EarnCredit(ctx context.Context, employeeID ledger.EmployeeID, earnedOn ledger.Date, reason string) (*ledger.CreditGrant, error) {
	if err := e.EnsureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	attempt := func() (*ledger.CreditGrant, error) {
		seq, err := e.Store.LedgerSeq(ctx, employeeID)
		if err != nil {
			return nil, err
		}

		existing, dup, err := e.ActiveGrantOn(ctx, employeeID, earnedOn)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, &ledger.DuplicateAccrualError{
				EmployeeID:      employeeID,
				EarnedOn:        earnedOn,
				ExistingGrantID: existing,
			}
		}

		note := reason
		if note == "" {
			note = fmt.Sprintf("Earned by working on %s", earnedOn)
		}

		grant := ledger.CreditGrant{
			ID:         ledger.GrantID(uuid.NewString()),
			EmployeeID: employeeID,
			EarnedOn:   earnedOn,
			Amount:     GrantDays,
			ExpiresOn:  ExpiryOf(earnedOn),
			SourceNote: note,
			GrantedAt:  e.Now().UTC(),
		}
		if err := e.Store.AppendGrant(ctx, grant, seq); err != nil {
			return nil, err
		}
		return &grant, nil
	}

	grant, err := attempt()
	if errors.Is(err, ledger.ErrConcurrentModification) {
		// One retry on a fresh read, then surface as a transient conflict.
		grant, err = attempt()
		if errors.Is(err, ledger.ErrConcurrentModification) {
			return nil, ledger.ErrConflict
		}
	}
	return grant, err
}

// RevokeGrant forfeits a grant's unconsumed remainder with a
// compensating event. Used when an attendance correction shows the
// credit was never earned. The grant itself is untouched. A concurrent
// append can move the ledger tail between the read and the write, so
// the revocation retries once on a fresh read before surfacing
// ErrConflict.
func (e *Engine) RevokeGrant(ctx context.Context, employeeID ledger.EmployeeID, grantID ledger.GrantID, reason string) (*ledger.ReversalRecord, error) {
	rec, err := e.revokeOnce(ctx, employeeID, grantID, reason)
	if errors.Is(err, ledger.ErrConcurrentModification) {
		rec, err = e.revokeOnce(ctx, employeeID, grantID, reason)
		if errors.Is(err, ledger.ErrConcurrentModification) {
			return nil, ledger.ErrConflict
		}
	}
	return rec, err
}

func (e *Engine) revokeOnce(ctx context.Context, employeeID ledger.EmployeeID, grantID ledger.GrantID, reason string) (*ledger.ReversalRecord, error) {
	v, seq, err := LoadView(ctx, e.Store, employeeID)
	if err != nil {
		return nil, err
	}

	var grant *ledger.CreditGrant
	for i := range v.Grants {
		if v.Grants[i].ID == grantID {
			grant = &v.Grants[i]
			break
		}
	}
	if grant == nil {
		return nil, fmt.Errorf("%w: grant %s", ledger.ErrRecordNotFound, grantID)
	}

	remainder := v.Remainder(*grant)
	if !remainder.IsPositive() {
		return nil, &ledger.InsufficientBalanceError{
			EmployeeID: employeeID,
			Requested:  grant.Amount,
			Available:  remainder,
		}
	}

	rec := ledger.ReversalRecord{
		ID:          uuid.NewString(),
		EmployeeID:  employeeID,
		Kind:        ledger.ReversalGrant,
		TargetID:    string(grantID),
		Amount:      remainder,
		EffectiveOn: ledger.DateOf(e.Now().UTC()),
		Reason:      reason,
		CreatedAt:   e.Now().UTC(),
	}
	if err := e.Store.AppendReversal(ctx, rec, seq); err != nil {
		return nil, err
	}
	return &rec, nil
}
