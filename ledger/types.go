/*
Package ledger contains the core types of the comp-off credit ledger.

PURPOSE:
  The ledger is an append-only record of everything that can change an
  employee's credit balance: earning a grant, consuming days against
  grants, a grant lapsing, and explicit compensating reversals. Balances
  are never stored - they are always recomputed from these events.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: a day quantity backed by decimal.Decimal
  - Employee: the entity credits belong to
  - Typed identifiers for grants, consumptions and employees

DESIGN PRINCIPLES:
  1. Immutability: events are never modified, only compensated
  2. Precision: decimal.Decimal avoids floating-point drift on half days
  3. Type safety: distinct ID types keep grant/consumption IDs apart
  4. Auditability: every event carries a note and a creation timestamp

SEE ALSO:
  - events.go: the ledger event types (grants, consumptions, ...)
  - store.go: persistence interface
  - errors.go: sentinel and structured errors
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Day quantity
// =============================================================================

// Amount is a quantity of leave credit, measured in days.
// Half-day requests make fractional values routine, so the value is a
// decimal rather than a float.
type Amount struct {
	Value decimal.Decimal
}

func Days(v float64) Amount        { return Amount{Value: decimal.NewFromFloat(v)} }
func DaysFromInt(v int) Amount     { return Amount{Value: decimal.NewFromInt(int64(v))} }
func ZeroDays() Amount             { return Amount{Value: decimal.Zero} }

func (a Amount) Add(b Amount) Amount      { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount      { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Neg() Amount              { return Amount{Value: a.Value.Neg()} }
func (a Amount) IsZero() bool             { return a.Value.IsZero() }
func (a Amount) IsNegative() bool         { return a.Value.IsNegative() }
func (a Amount) IsPositive() bool         { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool      { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool   { return a.Value.LessThan(b.Value) }

func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Float64 returns the amount as a float64 for presentation. The ledger
// itself never computes on floats.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

func (a Amount) String() string { return a.Value.String() }

// ParseAmount parses a decimal day amount from its string form,
// as stored in the database.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: d}, nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type GrantID string
type ConsumptionID string

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is the entity all credits and leave records belong to.
// Everything else about an employee (shifts, roles, contact data) lives
// outside the ledger.
type Employee struct {
	ID        EmployeeID
	Name      string
	Email     string
	HireDate  Date
	IsManager bool
	CreatedAt time.Time
}
