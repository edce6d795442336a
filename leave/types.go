/*
Package leave models leave requests and the statistics screens built on
them. Paid and unpaid leave are plain calendar bookkeeping against an
annual allotment; compensatory leave additionally debits the credit
ledger when approved, so the request carries a pointer to the
consumption it caused.
*/
package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rosterly/comp-ledger/ledger"
)

// ErrInvalid marks a request that fails field validation.
var ErrInvalid = errors.New("invalid leave request")

// =============================================================================
// TYPES
// =============================================================================

type Type string

const (
	TypePaid    Type = "paid"
	TypeUnpaid  Type = "unpaid"
	TypeCompOff Type = "comp_off"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypePaid, TypeUnpaid, TypeCompOff:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown leave type %q", s)
}

type Duration string

const (
	FullDay          Duration = "full_day"
	HalfDayMorning   Duration = "half_day_morning"
	HalfDayAfternoon Duration = "half_day_afternoon"
)

func ParseDuration(s string) (Duration, error) {
	switch Duration(s) {
	case FullDay, HalfDayMorning, HalfDayAfternoon:
		return Duration(s), nil
	}
	return "", fmt.Errorf("unknown leave duration %q", s)
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Request is one leave booking. Half-day bookings are single-date; a
// full-day booking may span a date range.
type Request struct {
	ID          string
	EmployeeID  ledger.EmployeeID
	Type        Type
	Duration    Duration
	StartDate   ledger.Date
	EndDate     ledger.Date
	Reason      string
	Status      Status
	ManagerNote string
	DecidedBy   ledger.EmployeeID

	// ConsumptionID links an approved comp_off request to the ledger
	// debit it caused. Empty for paid/unpaid leave.
	ConsumptionID ledger.ConsumptionID

	CreatedAt time.Time
	DecidedAt time.Time
}

// Days is the booked quantity: half a day for half-day durations,
// otherwise one day per calendar day spanned, inclusive of both ends.
func (r Request) Days() ledger.Amount {
	switch r.Duration {
	case HalfDayMorning, HalfDayAfternoon:
		return ledger.Days(0.5)
	default:
		return ledger.DaysFromInt(ledger.DaysBetween(r.StartDate, r.EndDate))
	}
}

// Validate checks the fields a caller controls.
func (r Request) Validate() error {
	if r.EmployeeID == "" {
		return fmt.Errorf("%w: employee id required", ErrInvalid)
	}
	if _, err := ParseType(string(r.Type)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := ParseDuration(string(r.Duration)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates required", ErrInvalid)
	}
	if r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("%w: end date %s before start date %s", ErrInvalid, r.EndDate, r.StartDate)
	}
	if r.Duration != FullDay && !r.StartDate.Equal(r.EndDate) {
		return fmt.Errorf("%w: half-day bookings cover a single date", ErrInvalid)
	}
	return nil
}

// Allotment is the annual paid-leave entitlement of one employee.
type Allotment struct {
	EmployeeID        ledger.EmployeeID
	Year              int
	AnnualEntitlement ledger.Amount
}

// =============================================================================
// STORE
// =============================================================================

// Store persists leave requests and allotments. SaveRequest upserts by
// ID. GetAllotment returns nil when no explicit allotment exists for
// the year; callers fall back to the configured default.
type Store interface {
	SaveRequest(ctx context.Context, req Request) error
	GetRequest(ctx context.Context, id string) (*Request, error)
	// DecideRequest writes req's decision fields only while the stored
	// row is still in the from status. ErrConflict when another decision
	// won the race, ErrRecordNotFound when the row is gone.
	DecideRequest(ctx context.Context, req Request, from Status) error
	// ListRequests filters by employee (empty matches all), status
	// (empty matches all) and year (zero matches all). Ordered by
	// (start_date, id).
	ListRequests(ctx context.Context, employeeID ledger.EmployeeID, status Status, year int) ([]Request, error)

	SaveAllotment(ctx context.Context, a Allotment) error
	GetAllotment(ctx context.Context, employeeID ledger.EmployeeID, year int) (*Allotment, error)
}
