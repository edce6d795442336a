/*
Package overtime models planned-overtime requests and per-day overtime
logs. A request books a wall-clock range ahead of the extra hours; a
worked entry records the hours actually put in. Monthly tracking is
derived from the two streams rather than stored: approved request hours
are the month's allocation, approved worked hours its usage.
*/
package overtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rosterly/comp-ledger/ledger"
	"github.com/shopspring/decimal"
)

// ErrInvalid marks a request or log entry that fails field validation.
var ErrInvalid = errors.New("invalid overtime entry")

// =============================================================================
// TYPES
// =============================================================================

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is a pre-approval for planned extra hours on one day. Hours
// are derived from the time range at submission, never taken from the
// caller.
type Request struct {
	ID          string
	EmployeeID  ledger.EmployeeID
	RequestDate ledger.Date
	FromTime    string // 24h wall clock, "15:04"
	ToTime      string
	Hours       decimal.Decimal
	Reason      string
	Status      Status
	ManagerNote string
	DecidedBy   ledger.EmployeeID
	CreatedAt   time.Time
	DecidedAt   time.Time
}

// Worked is one day's actual overtime log, hours over the scheduled
// shift. It carries its own approval state independent of any request.
type Worked struct {
	ID         string
	EmployeeID ledger.EmployeeID
	WorkDate   ledger.Date
	Hours      decimal.Decimal
	Note       string
	Status     Status
	DecidedBy  ledger.EmployeeID
	CreatedAt  time.Time
	DecidedAt  time.Time
}

// MonthlyTracking is the derived allocation card for one month.
// Remaining may go negative when more hours were worked than approved;
// display layers clamp.
type MonthlyTracking struct {
	EmployeeID ledger.EmployeeID
	Year       int
	Month      time.Month
	Allocated  decimal.Decimal
	Used       decimal.Decimal
	Remaining  decimal.Decimal
}

// HoursBetween converts a from/to wall-clock range into hours. A range
// that ends before it starts wraps past midnight into the next day; an
// empty range is an error.
func HoursBetween(from, to string) (decimal.Decimal, error) {
	f, err := time.Parse("15:04", from)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: from_time %q", ErrInvalid, from)
	}
	u, err := time.Parse("15:04", to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: to_time %q", ErrInvalid, to)
	}
	mins := int(u.Sub(f).Minutes())
	if mins < 0 {
		mins += 24 * 60
	}
	if mins == 0 {
		return decimal.Zero, fmt.Errorf("%w: to_time must differ from from_time", ErrInvalid)
	}
	return decimal.NewFromInt(int64(mins)).Div(decimal.NewFromInt(60)), nil
}

// =============================================================================
// STORE
// =============================================================================

// Store persists overtime requests and worked entries. The Decide
// methods guard on the stored status so racing decisions cannot both
// win a row; a miss surfaces as ledger.ErrConflict.
type Store interface {
	SaveOvertimeRequest(ctx context.Context, req Request) error
	GetOvertimeRequest(ctx context.Context, id string) (*Request, error)
	// ListOvertimeRequests filters by employee and status; empty values
	// match all. Ordered by (request_date, id).
	ListOvertimeRequests(ctx context.Context, employeeID ledger.EmployeeID, status Status) ([]Request, error)
	DecideOvertimeRequest(ctx context.Context, req Request, from Status) error

	SaveOvertimeWorked(ctx context.Context, entry Worked) error
	GetOvertimeWorked(ctx context.Context, id string) (*Worked, error)
	ListOvertimeWorked(ctx context.Context, employeeID ledger.EmployeeID, status Status) ([]Worked, error)
	DecideOvertimeWorked(ctx context.Context, entry Worked, from Status) error
}
