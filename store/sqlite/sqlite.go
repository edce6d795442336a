/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements all persistence interfaces (ledger.Store, ledger.EmployeeStore,
  compoff.RequestStore, leave.Store, overtime.Store) using SQLite. In
  production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

APPEND-ONLY ENFORCEMENT:
  The ledger tables are append-only:
  - No UPDATE statements on credit_grants, consumptions, expiry_records
    or reversal_records
  - Corrections land as reversal_records rows, never as edits

OPTIMISTIC TAIL CHECK:
  ledger_heads carries one row per employee with a monotonically
  increasing sequence. Every ledger append bumps it inside the same
  database transaction as the insert; when the caller supplies an
  expected sequence the bump is conditional (UPDATE ... WHERE seq = ?)
  and a miss surfaces as ErrConcurrentModification. A missing row reads
  as sequence zero.

KEY TABLES:
  credit_grants:           Immutable earn events
  consumptions:            Immutable use events
  consumption_allocations: FIFO split of each consumption across grants
  expiry_records:          Advisory forfeit audit rows
  reversal_records:        Compensating events
  ledger_heads:            Per-employee sequence for optimistic appends
  employees:               Entity records
  comp_off_requests:       Earn-request approval workflow
  leave_requests:          Paid/unpaid/comp-off bookings
  leave_allotments:        Annual paid-leave entitlements
  overtime_requests:       Planned-overtime pre-approvals
  overtime_worked:         Per-day overtime logs

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/rosterly.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := compoff.NewEngine(store, store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rosterly/comp-ledger/compoff"
	"github.com/rosterly/comp-ledger/leave"
	"github.com/rosterly/comp-ledger/ledger"
	"github.com/rosterly/comp-ledger/overtime"
	"github.com/shopspring/decimal"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ ledger.Store         = (*Store)(nil)
	_ ledger.EmployeeStore = (*Store)(nil)
	_ compoff.RequestStore = (*Store)(nil)
	_ leave.Store          = (*Store)(nil)
	_ overtime.Store       = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Reset clears all data. Only used by the demo seeder.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"overtime_worked", "overtime_requests",
		"leave_allotments", "leave_requests", "comp_off_requests",
		"reversal_records", "expiry_records", "consumption_allocations",
		"consumptions", "credit_grants", "ledger_heads", "employees",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		hire_date TEXT NOT NULL,
		is_manager BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	-- Per-employee ledger sequence (optimistic tail check)
	CREATE TABLE IF NOT EXISTS ledger_heads (
		employee_id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL DEFAULT 0
	);

	-- Credit grants (append-only earn events)
	CREATE TABLE IF NOT EXISTS credit_grants (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		earned_on TEXT NOT NULL,
		amount TEXT NOT NULL,
		expires_on TEXT NOT NULL,
		source_note TEXT,
		granted_at TEXT NOT NULL
	);

	-- Hot path: FIFO reads and duplicate-day checks
	CREATE INDEX IF NOT EXISTS idx_grants_employee_earned
		ON credit_grants(employee_id, earned_on, id);

	-- Consumptions (append-only use events)
	CREATE TABLE IF NOT EXISTS consumptions (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		consumed_on TEXT NOT NULL,
		amount TEXT NOT NULL,
		reference_id TEXT,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_consumptions_employee_date
		ON consumptions(employee_id, consumed_on, id);
	CREATE INDEX IF NOT EXISTS idx_consumptions_reference
		ON consumptions(reference_id) WHERE reference_id IS NOT NULL;

	-- FIFO split of each consumption across grants
	CREATE TABLE IF NOT EXISTS consumption_allocations (
		consumption_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		grant_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (consumption_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_allocations_grant
		ON consumption_allocations(grant_id);

	-- Advisory expiry audit rows
	CREATE TABLE IF NOT EXISTS expiry_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		grant_id TEXT NOT NULL,
		expired_on TEXT NOT NULL,
		amount TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expiry_employee
		ON expiry_records(employee_id, expired_on);

	-- Compensating events
	CREATE TABLE IF NOT EXISTS reversal_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		target_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		effective_on TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reversals_employee
		ON reversal_records(employee_id);
	CREATE INDEX IF NOT EXISTS idx_reversals_target
		ON reversal_records(target_id);

	-- Earn-request approval workflow
	CREATE TABLE IF NOT EXISTS comp_off_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		work_date TEXT NOT NULL,
		reason TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		manager_note TEXT,
		decided_by TEXT,
		grant_id TEXT,
		created_at TEXT NOT NULL,
		decided_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_comp_off_requests_employee
		ON comp_off_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_comp_off_requests_status
		ON comp_off_requests(status);

	-- Leave bookings
	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		duration TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		manager_note TEXT,
		decided_by TEXT,
		consumption_id TEXT,
		created_at TEXT NOT NULL,
		decided_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee
		ON leave_requests(employee_id, start_date);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status
		ON leave_requests(status);

	-- Annual paid-leave entitlements
	CREATE TABLE IF NOT EXISTS leave_allotments (
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		annual_entitlement TEXT NOT NULL,
		PRIMARY KEY (employee_id, year)
	);

	-- Planned-overtime pre-approvals
	CREATE TABLE IF NOT EXISTS overtime_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		request_date TEXT NOT NULL,
		from_time TEXT NOT NULL,
		to_time TEXT NOT NULL,
		hours TEXT NOT NULL,
		reason TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		manager_note TEXT,
		decided_by TEXT,
		created_at TEXT NOT NULL,
		decided_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_overtime_requests_employee
		ON overtime_requests(employee_id, request_date);
	CREATE INDEX IF NOT EXISTS idx_overtime_requests_status
		ON overtime_requests(status);

	-- Per-day overtime logs
	CREATE TABLE IF NOT EXISTS overtime_worked (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		work_date TEXT NOT NULL,
		hours TEXT NOT NULL,
		note TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		decided_by TEXT,
		created_at TEXT NOT NULL,
		decided_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_overtime_worked_employee
		ON overtime_worked(employee_id, work_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEDGER STORE (ledger.Store interface)
// =============================================================================

// bumpSeq advances the employee's ledger sequence inside tx. With an
// expected sequence the advance is conditional and a miss means another
// writer got there first.
func bumpSeq(ctx context.Context, tx *sql.Tx, employeeID ledger.EmployeeID, expectedSeq int64) error {
	if expectedSeq == ledger.NoSeqCheck {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_heads (employee_id, seq) VALUES (?, 1)
			ON CONFLICT(employee_id) DO UPDATE SET seq = seq + 1
		`, employeeID)
		if err != nil {
			return fmt.Errorf("failed to bump ledger head: %w", err)
		}
		return nil
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE ledger_heads SET seq = seq + 1 WHERE employee_id = ? AND seq = ?",
		employeeID, expectedSeq,
	)
	if err != nil {
		return fmt.Errorf("failed to bump ledger head: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// A missing row reads as sequence zero: the first append creates it.
	if expectedSeq == 0 {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO ledger_heads (employee_id, seq) VALUES (?, 1)",
			employeeID,
		); err != nil {
			return ledger.ErrConcurrentModification
		}
		return nil
	}
	return ledger.ErrConcurrentModification
}

// withTx runs fn inside a database transaction.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// AppendGrant adds an earn event to the ledger.
func (s *Store) AppendGrant(ctx context.Context, grant ledger.CreditGrant, expectedSeq int64) error {
	if err := grant.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := bumpSeq(ctx, tx, grant.EmployeeID, expectedSeq); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO credit_grants
			(id, employee_id, earned_on, amount, expires_on, source_note, granted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			grant.ID,
			grant.EmployeeID,
			grant.EarnedOn.String(),
			grant.Amount.String(),
			grant.ExpiresOn.String(),
			grant.SourceNote,
			grant.GrantedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to append grant: %w", err)
		}
		return nil
	})
}

// AppendConsumption adds a use event and its allocation split
// atomically.
func (s *Store) AppendConsumption(ctx context.Context, rec ledger.ConsumptionRecord, expectedSeq int64) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := bumpSeq(ctx, tx, rec.EmployeeID, expectedSeq); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO consumptions
			(id, employee_id, consumed_on, amount, reference_id, note, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			rec.ID,
			rec.EmployeeID,
			rec.ConsumedOn.String(),
			rec.Amount.String(),
			nullString(rec.ReferenceID),
			rec.Note,
			rec.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to append consumption: %w", err)
		}
		for i, a := range rec.Allocations {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO consumption_allocations
				(consumption_id, position, grant_id, amount)
				VALUES (?, ?, ?, ?)
			`, rec.ID, i, a.GrantID, a.Amount.String()); err != nil {
				return fmt.Errorf("failed to append allocation: %w", err)
			}
		}
		return nil
	})
}

// AppendExpiry adds an advisory expiry record. No tail check: the sweep
// never reasons about concurrent writers, it only records what the
// grant dates already imply.
func (s *Store) AppendExpiry(ctx context.Context, rec ledger.ExpiryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := bumpSeq(ctx, tx, rec.EmployeeID, ledger.NoSeqCheck); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expiry_records
			(id, employee_id, grant_id, expired_on, amount, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			rec.ID,
			rec.EmployeeID,
			rec.GrantID,
			rec.ExpiredOn.String(),
			rec.Amount.String(),
			rec.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to append expiry record: %w", err)
		}
		return nil
	})
}

// AppendReversal adds a compensating event.
func (s *Store) AppendReversal(ctx context.Context, rec ledger.ReversalRecord, expectedSeq int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := bumpSeq(ctx, tx, rec.EmployeeID, expectedSeq); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reversal_records
			(id, employee_id, kind, target_id, amount, effective_on, reason, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			rec.ID,
			rec.EmployeeID,
			rec.Kind,
			rec.TargetID,
			rec.Amount.String(),
			rec.EffectiveOn.String(),
			rec.Reason,
			rec.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to append reversal: %w", err)
		}
		return nil
	})
}

// Grants returns the employee's grants in FIFO order.
func (s *Store) Grants(ctx context.Context, employeeID ledger.EmployeeID) ([]ledger.CreditGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, earned_on, amount, expires_on, source_note, granted_at
		FROM credit_grants
		WHERE employee_id = ?
		ORDER BY earned_on ASC, id ASC
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grants: %w", err)
	}
	defer rows.Close()

	var grants []ledger.CreditGrant
	for rows.Next() {
		var (
			g          ledger.CreditGrant
			earnedOn   string
			amount     string
			expiresOn  string
			sourceNote sql.NullString
			grantedAt  string
		)
		if err := rows.Scan(&g.ID, &g.EmployeeID, &earnedOn, &amount, &expiresOn, &sourceNote, &grantedAt); err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		if g.EarnedOn, err = ledger.ParseDate(earnedOn); err != nil {
			return nil, err
		}
		if g.ExpiresOn, err = ledger.ParseDate(expiresOn); err != nil {
			return nil, err
		}
		if g.Amount, err = ledger.ParseAmount(amount); err != nil {
			return nil, err
		}
		g.SourceNote = sourceNote.String
		g.GrantedAt, _ = time.Parse(time.RFC3339, grantedAt)
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// Consumptions returns the employee's consumptions with their
// allocation splits, ordered by (consumed_on, id).
func (s *Store) Consumptions(ctx context.Context, employeeID ledger.EmployeeID) ([]ledger.ConsumptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, consumed_on, amount, reference_id, note, created_at
		FROM consumptions
		WHERE employee_id = ?
		ORDER BY consumed_on ASC, id ASC
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query consumptions: %w", err)
	}
	defer rows.Close()

	var recs []ledger.ConsumptionRecord
	for rows.Next() {
		var (
			c           ledger.ConsumptionRecord
			consumedOn  string
			amount      string
			referenceID sql.NullString
			note        sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&c.ID, &c.EmployeeID, &consumedOn, &amount, &referenceID, &note, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan consumption: %w", err)
		}
		if c.ConsumedOn, err = ledger.ParseDate(consumedOn); err != nil {
			return nil, err
		}
		if c.Amount, err = ledger.ParseAmount(amount); err != nil {
			return nil, err
		}
		c.ReferenceID = referenceID.String
		c.Note = note.String
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		recs = append(recs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recs {
		allocs, err := s.loadAllocations(ctx, recs[i].ID)
		if err != nil {
			return nil, err
		}
		recs[i].Allocations = allocs
	}
	return recs, nil
}

func (s *Store) loadAllocations(ctx context.Context, consumptionID ledger.ConsumptionID) ([]ledger.Allocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT grant_id, amount
		FROM consumption_allocations
		WHERE consumption_id = ?
		ORDER BY position ASC
	`, consumptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	var allocs []ledger.Allocation
	for rows.Next() {
		var (
			a      ledger.Allocation
			amount string
		)
		if err := rows.Scan(&a.GrantID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		if a.Amount, err = ledger.ParseAmount(amount); err != nil {
			return nil, err
		}
		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}

// Expiries returns the employee's advisory expiry records.
func (s *Store) Expiries(ctx context.Context, employeeID ledger.EmployeeID) ([]ledger.ExpiryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, grant_id, expired_on, amount, created_at
		FROM expiry_records
		WHERE employee_id = ?
		ORDER BY expired_on ASC, id ASC
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiry records: %w", err)
	}
	defer rows.Close()

	var recs []ledger.ExpiryRecord
	for rows.Next() {
		var (
			e         ledger.ExpiryRecord
			expiredOn string
			amount    string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.GrantID, &expiredOn, &amount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan expiry record: %w", err)
		}
		if e.ExpiredOn, err = ledger.ParseDate(expiredOn); err != nil {
			return nil, err
		}
		if e.Amount, err = ledger.ParseAmount(amount); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		recs = append(recs, e)
	}
	return recs, rows.Err()
}

// Reversals returns the employee's compensating events.
func (s *Store) Reversals(ctx context.Context, employeeID ledger.EmployeeID) ([]ledger.ReversalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, kind, target_id, amount, effective_on, reason, created_at
		FROM reversal_records
		WHERE employee_id = ?
		ORDER BY created_at ASC, id ASC
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reversals: %w", err)
	}
	defer rows.Close()

	var recs []ledger.ReversalRecord
	for rows.Next() {
		var (
			r           ledger.ReversalRecord
			amount      string
			effectiveOn string
			reason      sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.Kind, &r.TargetID, &amount, &effectiveOn, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan reversal: %w", err)
		}
		if r.Amount, err = ledger.ParseAmount(amount); err != nil {
			return nil, err
		}
		if r.EffectiveOn, err = ledger.ParseDate(effectiveOn); err != nil {
			return nil, err
		}
		r.Reason = reason.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// LedgerSeq returns the employee's current ledger sequence. Employees
// with no writes yet read as zero.
func (s *Store) LedgerSeq(ctx context.Context, employeeID ledger.EmployeeID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var seq int64
	err := s.db.QueryRowContext(ctx,
		"SELECT seq FROM ledger_heads WHERE employee_id = ?",
		employeeID,
	).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query ledger head: %w", err)
	}
	return seq, nil
}

// =============================================================================
// EMPLOYEE STORE (ledger.EmployeeStore interface)
// =============================================================================

// SaveEmployee creates or updates an employee record.
func (s *Store) SaveEmployee(ctx context.Context, emp ledger.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := emp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, hire_date, is_manager, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			hire_date = excluded.hire_date,
			is_manager = excluded.is_manager
	`,
		emp.ID,
		emp.Name,
		emp.Email,
		emp.HireDate.String(),
		emp.IsManager,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee returns nil when the employee does not exist.
func (s *Store) GetEmployee(ctx context.Context, id ledger.EmployeeID) (*ledger.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, hire_date, is_manager, created_at
		FROM employees WHERE id = ?
	`, id)

	emp, err := scanEmployee(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}

// ListEmployees returns all employees ordered by id.
func (s *Store) ListEmployees(ctx context.Context) ([]ledger.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, hire_date, is_manager, created_at
		FROM employees ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []ledger.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows.Scan)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}

func scanEmployee(scan func(dest ...any) error) (*ledger.Employee, error) {
	var (
		emp       ledger.Employee
		email     sql.NullString
		hireDate  string
		createdAt string
	)
	if err := scan(&emp.ID, &emp.Name, &email, &hireDate, &emp.IsManager, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if emp.HireDate, err = ledger.ParseDate(hireDate); err != nil {
		return nil, err
	}
	emp.Email = email.String
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &emp, nil
}

// =============================================================================
// EARN REQUEST STORE (compoff.RequestStore interface)
// =============================================================================

// SaveEarnRequest creates or updates an earn request.
func (s *Store) SaveEarnRequest(ctx context.Context, req compoff.EarnRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comp_off_requests
		(id, employee_id, work_date, reason, status, manager_note, decided_by, grant_id, created_at, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			manager_note = excluded.manager_note,
			decided_by = excluded.decided_by,
			grant_id = excluded.grant_id,
			decided_at = excluded.decided_at
	`,
		req.ID,
		req.EmployeeID,
		req.WorkDate.String(),
		req.Reason,
		req.Status,
		req.ManagerNote,
		req.DecidedBy,
		nullString(string(req.GrantID)),
		req.CreatedAt.UTC().Format(time.RFC3339),
		nullTime(req.DecidedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save earn request: %w", err)
	}
	return nil
}

// GetEarnRequest returns nil when the request does not exist.
func (s *Store) GetEarnRequest(ctx context.Context, id string) (*compoff.EarnRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, work_date, reason, status, manager_note, decided_by, grant_id, created_at, decided_at
		FROM comp_off_requests WHERE id = ?
	`, id)

	req, err := scanEarnRequest(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListEarnRequests filters by employee and status; empty values match
// all. Ordered by creation time.
func (s *Store) ListEarnRequests(ctx context.Context, employeeID ledger.EmployeeID, status compoff.RequestStatus) ([]compoff.EarnRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, work_date, reason, status, manager_note, decided_by, grant_id, created_at, decided_at
		FROM comp_off_requests
		WHERE (? = '' OR employee_id = ?) AND (? = '' OR status = ?)
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, employeeID, employeeID, status, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query earn requests: %w", err)
	}
	defer rows.Close()

	var reqs []compoff.EarnRequest
	for rows.Next() {
		req, err := scanEarnRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

func scanEarnRequest(scan func(dest ...any) error) (*compoff.EarnRequest, error) {
	var (
		req         compoff.EarnRequest
		workDate    string
		reason      sql.NullString
		managerNote sql.NullString
		decidedBy   sql.NullString
		grantID     sql.NullString
		createdAt   string
		decidedAt   sql.NullString
	)
	if err := scan(&req.ID, &req.EmployeeID, &workDate, &reason, &req.Status,
		&managerNote, &decidedBy, &grantID, &createdAt, &decidedAt); err != nil {
		return nil, err
	}
	var err error
	if req.WorkDate, err = ledger.ParseDate(workDate); err != nil {
		return nil, err
	}
	req.Reason = reason.String
	req.ManagerNote = managerNote.String
	req.DecidedBy = ledger.EmployeeID(decidedBy.String)
	req.GrantID = ledger.GrantID(grantID.String)
	req.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if decidedAt.Valid {
		req.DecidedAt, _ = time.Parse(time.RFC3339, decidedAt.String)
	}
	return &req, nil
}

// =============================================================================
// LEAVE STORE (leave.Store interface)
// =============================================================================

// SaveRequest creates or updates a leave request.
func (s *Store) SaveRequest(ctx context.Context, req leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests
		(id, employee_id, leave_type, duration, start_date, end_date, reason,
		 status, manager_note, decided_by, consumption_id, created_at, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			manager_note = excluded.manager_note,
			decided_by = excluded.decided_by,
			consumption_id = excluded.consumption_id,
			decided_at = excluded.decided_at
	`,
		req.ID,
		req.EmployeeID,
		req.Type,
		req.Duration,
		req.StartDate.String(),
		req.EndDate.String(),
		req.Reason,
		req.Status,
		req.ManagerNote,
		req.DecidedBy,
		nullString(string(req.ConsumptionID)),
		req.CreatedAt.UTC().Format(time.RFC3339),
		nullTime(req.DecidedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save leave request: %w", err)
	}
	return nil
}

// DecideRequest flips a request's decision fields with a guard on the
// stored status, so two racing deciders cannot both win the same row.
func (s *Store) DecideRequest(ctx context.Context, req leave.Request, from leave.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE leave_requests
		SET status = ?, manager_note = ?, decided_by = ?, consumption_id = ?, decided_at = ?
		WHERE id = ? AND status = ?
	`,
		req.Status,
		req.ManagerNote,
		req.DecidedBy,
		nullString(string(req.ConsumptionID)),
		nullTime(req.DecidedAt),
		req.ID,
		from,
	)
	if err != nil {
		return fmt.Errorf("failed to decide leave request: %w", err)
	}
	return decideOutcome(ctx, s.db, res, "leave_requests", "leave request", req.ID)
}

// GetRequest returns nil when the request does not exist.
func (s *Store) GetRequest(ctx context.Context, id string) (*leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, leave_type, duration, start_date, end_date, reason,
		       status, manager_note, decided_by, consumption_id, created_at, decided_at
		FROM leave_requests WHERE id = ?
	`, id)

	req, err := scanLeaveRequest(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListRequests filters by employee, status and start year; zero values
// match all. Ordered by (start_date, id).
func (s *Store) ListRequests(ctx context.Context, employeeID ledger.EmployeeID, status leave.Status, year int) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, leave_type, duration, start_date, end_date, reason,
		       status, manager_note, decided_by, consumption_id, created_at, decided_at
		FROM leave_requests
		WHERE (? = '' OR employee_id = ?)
		  AND (? = '' OR status = ?)
		  AND (? = 0 OR CAST(strftime('%Y', start_date) AS INTEGER) = ?)
		ORDER BY start_date ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, employeeID, employeeID, status, status, year, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var reqs []leave.Request
	for rows.Next() {
		req, err := scanLeaveRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

func scanLeaveRequest(scan func(dest ...any) error) (*leave.Request, error) {
	var (
		req           leave.Request
		startDate     string
		endDate       string
		reason        sql.NullString
		managerNote   sql.NullString
		decidedBy     sql.NullString
		consumptionID sql.NullString
		createdAt     string
		decidedAt     sql.NullString
	)
	if err := scan(&req.ID, &req.EmployeeID, &req.Type, &req.Duration, &startDate, &endDate,
		&reason, &req.Status, &managerNote, &decidedBy, &consumptionID, &createdAt, &decidedAt); err != nil {
		return nil, err
	}
	var err error
	if req.StartDate, err = ledger.ParseDate(startDate); err != nil {
		return nil, err
	}
	if req.EndDate, err = ledger.ParseDate(endDate); err != nil {
		return nil, err
	}
	req.Reason = reason.String
	req.ManagerNote = managerNote.String
	req.DecidedBy = ledger.EmployeeID(decidedBy.String)
	req.ConsumptionID = ledger.ConsumptionID(consumptionID.String)
	req.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if decidedAt.Valid {
		req.DecidedAt, _ = time.Parse(time.RFC3339, decidedAt.String)
	}
	return &req, nil
}

// SaveAllotment creates or replaces an annual entitlement.
func (s *Store) SaveAllotment(ctx context.Context, a leave.Allotment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_allotments (employee_id, year, annual_entitlement)
		VALUES (?, ?, ?)
		ON CONFLICT(employee_id, year) DO UPDATE SET
			annual_entitlement = excluded.annual_entitlement
	`, a.EmployeeID, a.Year, a.AnnualEntitlement.String())
	if err != nil {
		return fmt.Errorf("failed to save allotment: %w", err)
	}
	return nil
}

// GetAllotment returns nil when no explicit allotment exists for the
// year.
func (s *Store) GetAllotment(ctx context.Context, employeeID ledger.EmployeeID, year int) (*leave.Allotment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entitlement string
	err := s.db.QueryRowContext(ctx, `
		SELECT annual_entitlement FROM leave_allotments
		WHERE employee_id = ? AND year = ?
	`, employeeID, year).Scan(&entitlement)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query allotment: %w", err)
	}

	amount, err := ledger.ParseAmount(entitlement)
	if err != nil {
		return nil, err
	}
	return &leave.Allotment{
		EmployeeID:        employeeID,
		Year:              year,
		AnnualEntitlement: amount,
	}, nil
}

// =============================================================================
// OVERTIME STORE (overtime.Store interface)
// =============================================================================

// SaveOvertimeRequest creates or updates a planned-overtime request.
func (s *Store) SaveOvertimeRequest(ctx context.Context, req overtime.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO overtime_requests
		(id, employee_id, request_date, from_time, to_time, hours, reason,
		 status, manager_note, decided_by, created_at, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			manager_note = excluded.manager_note,
			decided_by = excluded.decided_by,
			decided_at = excluded.decided_at
	`,
		req.ID,
		req.EmployeeID,
		req.RequestDate.String(),
		req.FromTime,
		req.ToTime,
		req.Hours.String(),
		req.Reason,
		req.Status,
		nullString(req.ManagerNote),
		nullString(string(req.DecidedBy)),
		req.CreatedAt.UTC().Format(time.RFC3339),
		nullTime(req.DecidedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save overtime request: %w", err)
	}
	return nil
}

// GetOvertimeRequest returns nil when the request does not exist.
func (s *Store) GetOvertimeRequest(ctx context.Context, id string) (*overtime.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, request_date, from_time, to_time, hours, reason,
		       status, manager_note, decided_by, created_at, decided_at
		FROM overtime_requests WHERE id = ?
	`, id)

	req, err := scanOvertimeRequest(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListOvertimeRequests filters by employee and status; empty values
// match all. Ordered by (request_date, id).
func (s *Store) ListOvertimeRequests(ctx context.Context, employeeID ledger.EmployeeID, status overtime.Status) ([]overtime.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, request_date, from_time, to_time, hours, reason,
		       status, manager_note, decided_by, created_at, decided_at
		FROM overtime_requests WHERE 1=1
	`
	var args []any
	if employeeID != "" {
		query += " AND employee_id = ?"
		args = append(args, employeeID)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY request_date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query overtime requests: %w", err)
	}
	defer rows.Close()

	var reqs []overtime.Request
	for rows.Next() {
		req, err := scanOvertimeRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

// DecideOvertimeRequest flips the request's decision fields with a
// guard on the stored status.
func (s *Store) DecideOvertimeRequest(ctx context.Context, req overtime.Request, from overtime.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE overtime_requests
		SET status = ?, manager_note = ?, decided_by = ?, decided_at = ?
		WHERE id = ? AND status = ?
	`,
		req.Status,
		nullString(req.ManagerNote),
		nullString(string(req.DecidedBy)),
		nullTime(req.DecidedAt),
		req.ID,
		from,
	)
	if err != nil {
		return fmt.Errorf("failed to decide overtime request: %w", err)
	}
	return decideOutcome(ctx, s.db, res, "overtime_requests", "overtime request", req.ID)
}

func scanOvertimeRequest(scan func(dest ...any) error) (*overtime.Request, error) {
	var (
		req         overtime.Request
		requestDate string
		hours       string
		managerNote sql.NullString
		decidedBy   sql.NullString
		createdAt   string
		decidedAt   sql.NullString
	)
	if err := scan(&req.ID, &req.EmployeeID, &requestDate, &req.FromTime, &req.ToTime,
		&hours, &req.Reason, &req.Status, &managerNote, &decidedBy, &createdAt, &decidedAt); err != nil {
		return nil, err
	}
	var err error
	if req.RequestDate, err = ledger.ParseDate(requestDate); err != nil {
		return nil, err
	}
	if req.Hours, err = decimal.NewFromString(hours); err != nil {
		return nil, fmt.Errorf("bad hours value %q: %w", hours, err)
	}
	req.ManagerNote = managerNote.String
	req.DecidedBy = ledger.EmployeeID(decidedBy.String)
	req.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if decidedAt.Valid {
		req.DecidedAt, _ = time.Parse(time.RFC3339, decidedAt.String)
	}
	return &req, nil
}

// SaveOvertimeWorked creates or updates a per-day overtime log.
func (s *Store) SaveOvertimeWorked(ctx context.Context, entry overtime.Worked) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO overtime_worked
		(id, employee_id, work_date, hours, note, status, decided_by, created_at, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			decided_by = excluded.decided_by,
			decided_at = excluded.decided_at
	`,
		entry.ID,
		entry.EmployeeID,
		entry.WorkDate.String(),
		entry.Hours.String(),
		nullString(entry.Note),
		entry.Status,
		nullString(string(entry.DecidedBy)),
		entry.CreatedAt.UTC().Format(time.RFC3339),
		nullTime(entry.DecidedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save overtime log: %w", err)
	}
	return nil
}

// GetOvertimeWorked returns nil when the log entry does not exist.
func (s *Store) GetOvertimeWorked(ctx context.Context, id string) (*overtime.Worked, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, work_date, hours, note, status, decided_by, created_at, decided_at
		FROM overtime_worked WHERE id = ?
	`, id)

	entry, err := scanOvertimeWorked(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListOvertimeWorked filters by employee and status; empty values match
// all. Ordered by (work_date, id).
func (s *Store) ListOvertimeWorked(ctx context.Context, employeeID ledger.EmployeeID, status overtime.Status) ([]overtime.Worked, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, work_date, hours, note, status, decided_by, created_at, decided_at
		FROM overtime_worked WHERE 1=1
	`
	var args []any
	if employeeID != "" {
		query += " AND employee_id = ?"
		args = append(args, employeeID)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY work_date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query overtime logs: %w", err)
	}
	defer rows.Close()

	var entries []overtime.Worked
	for rows.Next() {
		entry, err := scanOvertimeWorked(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// DecideOvertimeWorked flips the log's review fields with a guard on
// the stored status.
func (s *Store) DecideOvertimeWorked(ctx context.Context, entry overtime.Worked, from overtime.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE overtime_worked
		SET status = ?, decided_by = ?, decided_at = ?
		WHERE id = ? AND status = ?
	`,
		entry.Status,
		nullString(string(entry.DecidedBy)),
		nullTime(entry.DecidedAt),
		entry.ID,
		from,
	)
	if err != nil {
		return fmt.Errorf("failed to decide overtime log: %w", err)
	}
	return decideOutcome(ctx, s.db, res, "overtime_worked", "overtime log", entry.ID)
}

func scanOvertimeWorked(scan func(dest ...any) error) (*overtime.Worked, error) {
	var (
		entry     overtime.Worked
		workDate  string
		hours     string
		note      sql.NullString
		decidedBy sql.NullString
		createdAt string
		decidedAt sql.NullString
	)
	if err := scan(&entry.ID, &entry.EmployeeID, &workDate, &hours, &note,
		&entry.Status, &decidedBy, &createdAt, &decidedAt); err != nil {
		return nil, err
	}
	var err error
	if entry.WorkDate, err = ledger.ParseDate(workDate); err != nil {
		return nil, err
	}
	if entry.Hours, err = decimal.NewFromString(hours); err != nil {
		return nil, fmt.Errorf("bad hours value %q: %w", hours, err)
	}
	entry.Note = note.String
	entry.DecidedBy = ledger.EmployeeID(decidedBy.String)
	entry.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if decidedAt.Valid {
		entry.DecidedAt, _ = time.Parse(time.RFC3339, decidedAt.String)
	}
	return &entry, nil
}

// decideOutcome classifies a zero-row guarded UPDATE: row gone versus
// status already moved on.
func decideOutcome(ctx context.Context, db *sql.DB, res sql.Result, table, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var current string
	err = db.QueryRowContext(ctx, "SELECT status FROM "+table+" WHERE id = ?", id).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s %s", ledger.ErrRecordNotFound, kind, id)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s %s already %s", ledger.ErrConflict, kind, id, current)
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}
