/*
expiry.go - Advisory expiry sweep

PURPOSE:
  Writes an ExpiryRecord for every grant whose window has lapsed with a
  positive unconsumed remainder. The records are an audit trail only:
  balance and breakdown math derives expiry from grant dates and never
  reads these records, so a late or skipped sweep can never change a
  balance. Re-running a sweep is a no-op for grants already recorded.
*/
package compoff

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rosterly/comp-ledger/ledger"
)

// Sweeper materializes expiry audit records across the workforce. Sweeps
// are serialized: the scheduled sweep and a manually triggered one can
// otherwise both pass the already-recorded check and write duplicate
// audit rows.
type Sweeper struct {
	Store     ledger.Store
	Employees ledger.EmployeeStore
	Now       func() time.Time

	mu sync.Mutex
}

func NewSweeper(store ledger.Store, employees ledger.EmployeeStore) *Sweeper {
	return &Sweeper{Store: store, Employees: employees, Now: time.Now}
}

// SweepResult reports what a sweep recorded.
type SweepResult struct {
	EmployeesScanned int
	RecordsWritten   int
	DaysForfeited    ledger.Amount
}

// Sweep scans every employee and records each grant that lapsed on or
// before asOf with credit still unspent. Idempotent: a grant already
// covered by an expiry record is skipped.
func (s *Sweeper) Sweep(ctx context.Context, asOf ledger.Date) (*SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	employees, err := s.Employees.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	res := &SweepResult{DaysForfeited: ledger.ZeroDays()}
	for _, emp := range employees {
		n, forfeited, err := s.sweepEmployee(ctx, emp.ID, asOf)
		if err != nil {
			return nil, err
		}
		res.EmployeesScanned++
		res.RecordsWritten += n
		res.DaysForfeited = res.DaysForfeited.Add(forfeited)
	}
	return res, nil
}

// SweepEmployee records lapsed grants for a single employee.
func (s *Sweeper) SweepEmployee(ctx context.Context, employeeID ledger.EmployeeID, asOf ledger.Date) (int, ledger.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepEmployee(ctx, employeeID, asOf)
}

func (s *Sweeper) sweepEmployee(ctx context.Context, employeeID ledger.EmployeeID, asOf ledger.Date) (int, ledger.Amount, error) {
	v, _, err := LoadView(ctx, s.Store, employeeID)
	if err != nil {
		return 0, ledger.ZeroDays(), err
	}

	recorded := make(map[ledger.GrantID]bool, len(v.Expiries))
	for _, e := range v.Expiries {
		recorded[e.GrantID] = true
	}

	written := 0
	forfeited := ledger.ZeroDays()
	for _, g := range v.Grants {
		if !asOf.After(g.ExpiresOn) {
			continue
		}
		if recorded[g.ID] {
			continue
		}
		remainder := v.Remainder(g)
		if !remainder.IsPositive() {
			continue
		}
		rec := ledger.ExpiryRecord{
			ID:         uuid.NewString(),
			EmployeeID: employeeID,
			GrantID:    g.ID,
			ExpiredOn:  g.ExpiresOn,
			Amount:     remainder,
			CreatedAt:  s.Now().UTC(),
		}
		if err := s.Store.AppendExpiry(ctx, rec); err != nil {
			return written, forfeited, err
		}
		written++
		forfeited = forfeited.Add(remainder)
	}
	return written, forfeited, nil
}
