/*
service.go - Overtime request and work-log lifecycle

PURPOSE:
  Employees file requests for planned extra hours and log the hours
  actually worked; managers decide both streams. Nothing here touches
  the credit ledger: overtime is paid in hours, comp-off in days, and
  the two accrue through separate workflows.
*/
package overtime

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rosterly/comp-ledger/ledger"
	"github.com/shopspring/decimal"
)

// Service runs the overtime lifecycle.
type Service struct {
	Store     Store
	Employees ledger.EmployeeStore
	Now       func() time.Time
}

func NewService(store Store, employees ledger.EmployeeStore) *Service {
	return &Service{Store: store, Employees: employees, Now: time.Now}
}

// =============================================================================
// REQUESTS
// =============================================================================

// Submit files a pending overtime request. The booked hours come from
// the time range, so a caller cannot claim more than the range holds.
func (s *Service) Submit(ctx context.Context, employeeID ledger.EmployeeID, requestDate ledger.Date, fromTime, toTime, reason string) (*Request, error) {
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	if requestDate.IsZero() {
		return nil, fmt.Errorf("%w: request date required", ErrInvalid)
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: reason required", ErrInvalid)
	}
	hours, err := HoursBetween(fromTime, toTime)
	if err != nil {
		return nil, err
	}

	req := Request{
		ID:          uuid.NewString(),
		EmployeeID:  employeeID,
		RequestDate: requestDate,
		FromTime:    fromTime,
		ToTime:      toTime,
		Hours:       hours,
		Reason:      reason,
		Status:      StatusPending,
		CreatedAt:   s.Now().UTC(),
	}
	if err := s.Store.SaveOvertimeRequest(ctx, req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Approve books the requested hours into the month's allocation.
func (s *Service) Approve(ctx context.Context, requestID string, approver ledger.EmployeeID, note string) (*Request, error) {
	return s.decideRequest(ctx, requestID, StatusApproved, approver, note)
}

// Reject closes the request; its hours never enter the allocation.
func (s *Service) Reject(ctx context.Context, requestID string, approver ledger.EmployeeID, note string) (*Request, error) {
	return s.decideRequest(ctx, requestID, StatusRejected, approver, note)
}

func (s *Service) decideRequest(ctx context.Context, requestID string, to Status, approver ledger.EmployeeID, note string) (*Request, error) {
	req, err := s.Store.GetOvertimeRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: overtime request %s", ledger.ErrRecordNotFound, requestID)
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: overtime request %s already %s", ledger.ErrConflict, requestID, req.Status)
	}

	req.Status = to
	req.ManagerNote = note
	req.DecidedBy = approver
	req.DecidedAt = s.Now().UTC()
	if err := s.Store.DecideOvertimeRequest(ctx, *req, StatusPending); err != nil {
		return nil, err
	}
	return req, nil
}

// =============================================================================
// WORK LOGS
// =============================================================================

// LogWorked records the overtime hours actually worked on one day,
// pending manager review.
func (s *Service) LogWorked(ctx context.Context, employeeID ledger.EmployeeID, workDate ledger.Date, hours decimal.Decimal, note string) (*Worked, error) {
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	if workDate.IsZero() {
		return nil, fmt.Errorf("%w: work date required", ErrInvalid)
	}
	if !hours.IsPositive() {
		return nil, fmt.Errorf("%w: hours must be positive, got %s", ErrInvalid, hours)
	}

	entry := Worked{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		WorkDate:   workDate,
		Hours:      hours,
		Note:       note,
		Status:     StatusPending,
		CreatedAt:  s.Now().UTC(),
	}
	if err := s.Store.SaveOvertimeWorked(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ApproveWorked counts the logged hours against the month's allocation.
func (s *Service) ApproveWorked(ctx context.Context, entryID string, approver ledger.EmployeeID) (*Worked, error) {
	return s.decideWorked(ctx, entryID, StatusApproved, approver)
}

// RejectWorked discards the log entry from the usage numbers.
func (s *Service) RejectWorked(ctx context.Context, entryID string, approver ledger.EmployeeID) (*Worked, error) {
	return s.decideWorked(ctx, entryID, StatusRejected, approver)
}

func (s *Service) decideWorked(ctx context.Context, entryID string, to Status, approver ledger.EmployeeID) (*Worked, error) {
	entry, err := s.Store.GetOvertimeWorked(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: overtime log %s", ledger.ErrRecordNotFound, entryID)
	}
	if entry.Status != StatusPending {
		return nil, fmt.Errorf("%w: overtime log %s already %s", ledger.ErrConflict, entryID, entry.Status)
	}

	entry.Status = to
	entry.DecidedBy = approver
	entry.DecidedAt = s.Now().UTC()
	if err := s.Store.DecideOvertimeWorked(ctx, *entry, StatusPending); err != nil {
		return nil, err
	}
	return entry, nil
}

// =============================================================================
// TRACKING
// =============================================================================

// Tracking derives one month's allocation card from the approved
// requests and approved work logs. Pending and rejected rows of either
// stream contribute nothing.
func (s *Service) Tracking(ctx context.Context, employeeID ledger.EmployeeID, year int, month time.Month) (*MonthlyTracking, error) {
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	reqs, err := s.Store.ListOvertimeRequests(ctx, employeeID, StatusApproved)
	if err != nil {
		return nil, err
	}
	allocated := decimal.Zero
	for _, req := range reqs {
		if req.RequestDate.Year() == year && req.RequestDate.Month() == month {
			allocated = allocated.Add(req.Hours)
		}
	}

	logs, err := s.Store.ListOvertimeWorked(ctx, employeeID, StatusApproved)
	if err != nil {
		return nil, err
	}
	used := decimal.Zero
	for _, entry := range logs {
		if entry.WorkDate.Year() == year && entry.WorkDate.Month() == month {
			used = used.Add(entry.Hours)
		}
	}

	return &MonthlyTracking{
		EmployeeID: employeeID,
		Year:       year,
		Month:      month,
		Allocated:  allocated,
		Used:       used,
		Remaining:  allocated.Sub(used),
	}, nil
}

func (s *Service) ensureEmployee(ctx context.Context, employeeID ledger.EmployeeID) error {
	emp, err := s.Employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		return fmt.Errorf("%w: %s", ledger.ErrEmployeeNotFound, employeeID)
	}
	return nil
}
