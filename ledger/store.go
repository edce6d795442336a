/*
store.go - Persistence interface for the credit ledger

PURPOSE:
  Defines the contract between the ledger engine and the database.
  Implementations keep the append-only guarantee: there is no Update and
  no Delete on any ledger record, ever.

APPEND-ONLY CONTRACT:
  - AppendGrant / AppendConsumption / AppendExpiry / AppendReversal are
    the only writes
  - a consumption is written atomically with its allocations
  - corrections go through AppendReversal

OPTIMISTIC TAIL CHECK:
  Every append advances the employee's ledger sequence. Writers that must
  not race a stale read (the consumption resolver) pass the sequence they
  observed; the store rejects the append with ErrConcurrentModification
  if the tail moved. Readers and advisory writers pass NoSeqCheck.

ORDERING:
  Readers return records in the explicit total order the resolvers rely
  on: grants by (earned_on, id), consumptions by (consumed_on, id). The
  ordering is part of the contract, not an accident of storage iteration.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - ledger/store: in-memory store for tests and dev
*/
package ledger

import "context"

// NoSeqCheck skips the optimistic tail check on an append.
const NoSeqCheck int64 = -1

// Store persists ledger events. APPEND-ONLY: no Update, no Delete.
type Store interface {
	// AppendGrant persists a grant. expectedSeq guards against a
	// concurrent append for the same employee.
	AppendGrant(ctx context.Context, grant CreditGrant, expectedSeq int64) error

	// AppendConsumption persists a consumption and its allocations
	// atomically. Either the whole record lands or none of it does.
	AppendConsumption(ctx context.Context, rec ConsumptionRecord, expectedSeq int64) error

	// AppendExpiry persists an advisory expiry write-off.
	AppendExpiry(ctx context.Context, rec ExpiryRecord) error

	// AppendReversal persists a compensating event.
	AppendReversal(ctx context.Context, rec ReversalRecord, expectedSeq int64) error

	// Grants returns all grants for the employee ordered by
	// (earned_on, id) ascending - the FIFO order.
	Grants(ctx context.Context, employeeID EmployeeID) ([]CreditGrant, error)

	// Consumptions returns all consumptions with their allocations,
	// ordered by (consumed_on, id) ascending.
	Consumptions(ctx context.Context, employeeID EmployeeID) ([]ConsumptionRecord, error)

	// Expiries returns the advisory expiry records.
	Expiries(ctx context.Context, employeeID EmployeeID) ([]ExpiryRecord, error)

	// Reversals returns all compensating events.
	Reversals(ctx context.Context, employeeID EmployeeID) ([]ReversalRecord, error)

	// LedgerSeq returns the employee's current append sequence.
	LedgerSeq(ctx context.Context, employeeID EmployeeID) (int64, error)
}

// EmployeeStore persists employee records. Employees are not ledger
// events; they exist so unknown-employee lookups fail cleanly.
type EmployeeStore interface {
	SaveEmployee(ctx context.Context, emp Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}
