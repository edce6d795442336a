// Package store provides the in-memory ledger.Store implementation
// used by tests and local development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rosterly/comp-ledger/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	grants       map[ledger.EmployeeID][]ledger.CreditGrant
	consumptions map[ledger.EmployeeID][]ledger.ConsumptionRecord
	expiries     map[ledger.EmployeeID][]ledger.ExpiryRecord
	reversals    map[ledger.EmployeeID][]ledger.ReversalRecord
	seqs         map[ledger.EmployeeID]int64
	employees    map[ledger.EmployeeID]ledger.Employee
}

func NewMemory() *Memory {
	return &Memory{
		grants:       make(map[ledger.EmployeeID][]ledger.CreditGrant),
		consumptions: make(map[ledger.EmployeeID][]ledger.ConsumptionRecord),
		expiries:     make(map[ledger.EmployeeID][]ledger.ExpiryRecord),
		reversals:    make(map[ledger.EmployeeID][]ledger.ReversalRecord),
		seqs:         make(map[ledger.EmployeeID]int64),
		employees:    make(map[ledger.EmployeeID]ledger.Employee),
	}
}

var _ ledger.Store = (*Memory)(nil)
var _ ledger.EmployeeStore = (*Memory)(nil)

// checkSeqLocked verifies the optimistic tail check and bumps the
// sequence on success.
func (m *Memory) checkSeqLocked(employeeID ledger.EmployeeID, expectedSeq int64) error {
	if expectedSeq != ledger.NoSeqCheck && m.seqs[employeeID] != expectedSeq {
		return ledger.ErrConcurrentModification
	}
	m.seqs[employeeID]++
	return nil
}

func (m *Memory) AppendGrant(_ context.Context, grant ledger.CreditGrant, expectedSeq int64) error {
	if err := grant.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkSeqLocked(grant.EmployeeID, expectedSeq); err != nil {
		return err
	}

	grants := m.grants[grant.EmployeeID]

	// Insert in (earned_on, id) order so reads never sort.
	i := sort.Search(len(grants), func(i int) bool {
		g := grants[i]
		if !g.EarnedOn.Equal(grant.EarnedOn) {
			return g.EarnedOn.After(grant.EarnedOn)
		}
		return g.ID > grant.ID
	})
	grants = append(grants, ledger.CreditGrant{})
	copy(grants[i+1:], grants[i:])
	grants[i] = grant
	m.grants[grant.EmployeeID] = grants
	return nil
}

func (m *Memory) AppendConsumption(_ context.Context, rec ledger.ConsumptionRecord, expectedSeq int64) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkSeqLocked(rec.EmployeeID, expectedSeq); err != nil {
		return err
	}

	recs := m.consumptions[rec.EmployeeID]
	i := sort.Search(len(recs), func(i int) bool {
		c := recs[i]
		if !c.ConsumedOn.Equal(rec.ConsumedOn) {
			return c.ConsumedOn.After(rec.ConsumedOn)
		}
		return c.ID > rec.ID
	})
	recs = append(recs, ledger.ConsumptionRecord{})
	copy(recs[i+1:], recs[i:])
	recs[i] = rec
	m.consumptions[rec.EmployeeID] = recs
	return nil
}

func (m *Memory) AppendExpiry(_ context.Context, rec ledger.ExpiryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seqs[rec.EmployeeID]++
	m.expiries[rec.EmployeeID] = append(m.expiries[rec.EmployeeID], rec)
	return nil
}

func (m *Memory) AppendReversal(_ context.Context, rec ledger.ReversalRecord, expectedSeq int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkSeqLocked(rec.EmployeeID, expectedSeq); err != nil {
		return err
	}
	m.reversals[rec.EmployeeID] = append(m.reversals[rec.EmployeeID], rec)
	return nil
}

func (m *Memory) Grants(_ context.Context, employeeID ledger.EmployeeID) ([]ledger.CreditGrant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.CreditGrant, len(m.grants[employeeID]))
	copy(result, m.grants[employeeID])
	return result, nil
}

func (m *Memory) Consumptions(_ context.Context, employeeID ledger.EmployeeID) ([]ledger.ConsumptionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.ConsumptionRecord, len(m.consumptions[employeeID]))
	copy(result, m.consumptions[employeeID])
	return result, nil
}

func (m *Memory) Expiries(_ context.Context, employeeID ledger.EmployeeID) ([]ledger.ExpiryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.ExpiryRecord, len(m.expiries[employeeID]))
	copy(result, m.expiries[employeeID])
	return result, nil
}

func (m *Memory) Reversals(_ context.Context, employeeID ledger.EmployeeID) ([]ledger.ReversalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.ReversalRecord, len(m.reversals[employeeID]))
	copy(result, m.reversals[employeeID])
	return result, nil
}

func (m *Memory) LedgerSeq(_ context.Context, employeeID ledger.EmployeeID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seqs[employeeID], nil
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, emp ledger.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id ledger.EmployeeID) (*ledger.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]ledger.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
