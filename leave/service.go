/*
service.go - Leave request lifecycle

PURPOSE:
  Submit, approve, reject and cancel leave requests. Paid and unpaid
  leave touch nothing but the request row. Compensatory leave is the
  one type wired to the credit ledger: approval allocates the booked
  days FIFO against the employee's grants, and cancelling an approved
  booking reverses that consumption with a compensating event.

ORDERING:
  For comp_off approval the ledger debit lands FIRST, then the request
  row flips to approved under a status guard. If a concurrent decision
  wins the row between the read and the write, the loser reverses its
  own debit with a compensating event and reports the conflict, so two
  racing approvals can never double-debit one booking. The reverse
  order would risk an approved booking with no debit, which is the
  failure mode the balance math can not detect.
*/
package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rosterly/comp-ledger/compoff"
	"github.com/rosterly/comp-ledger/ledger"
)

// Service runs the leave request lifecycle.
type Service struct {
	Store     Store
	Employees ledger.EmployeeStore
	Resolver  *compoff.Resolver
	Now       func() time.Time
}

func NewService(store Store, employees ledger.EmployeeStore, resolver *compoff.Resolver) *Service {
	return &Service{Store: store, Employees: employees, Resolver: resolver, Now: time.Now}
}

// Submit files a pending leave request. For comp_off the balance is NOT
// checked here; submission is cheap and the authoritative check happens
// at approval, where the allocation either covers the days or fails.
func (s *Service) Submit(ctx context.Context, req Request) (*Request, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	emp, err := s.Employees.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("%w: %s", ledger.ErrEmployeeNotFound, req.EmployeeID)
	}

	req.ID = uuid.NewString()
	req.Status = StatusPending
	req.ConsumptionID = ""
	req.CreatedAt = s.Now().UTC()
	if err := s.Store.SaveRequest(ctx, req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Approve decides a pending request. A comp_off request debits the
// ledger; on insufficient balance the request stays pending and the
// error surfaces to the approver. The row write is guarded on the
// pending status; losing that race undoes the debit.
func (s *Service) Approve(ctx context.Context, requestID string, approver ledger.EmployeeID, note string) (*Request, error) {
	req, err := s.pending(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.Type == TypeCompOff {
		rec, err := s.Resolver.Allocate(ctx, req.EmployeeID, req.StartDate, req.Days(), req.ID,
			fmt.Sprintf("Comp-off leave %s to %s", req.StartDate, req.EndDate))
		if err != nil {
			return nil, err
		}
		req.ConsumptionID = rec.ID
	}

	req.Status = StatusApproved
	req.ManagerNote = note
	req.DecidedBy = approver
	req.DecidedAt = s.Now().UTC()
	if err := s.Store.DecideRequest(ctx, *req, StatusPending); err != nil {
		if errors.Is(err, ledger.ErrConflict) && req.ConsumptionID != "" {
			if _, rerr := s.Resolver.ReverseConsumption(ctx, req.EmployeeID, req.ConsumptionID,
				fmt.Sprintf("Approval of leave request %s lost to a concurrent decision", requestID)); rerr != nil {
				return nil, fmt.Errorf("undoing debit after lost decision: %w", rerr)
			}
		}
		return nil, err
	}
	return req, nil
}

// Reject closes a pending request with no ledger effect.
func (s *Service) Reject(ctx context.Context, requestID string, approver ledger.EmployeeID, note string) (*Request, error) {
	req, err := s.pending(ctx, requestID)
	if err != nil {
		return nil, err
	}

	req.Status = StatusRejected
	req.ManagerNote = note
	req.DecidedBy = approver
	req.DecidedAt = s.Now().UTC()
	if err := s.Store.DecideRequest(ctx, *req, StatusPending); err != nil {
		return nil, err
	}
	return req, nil
}

// Cancel withdraws a pending or approved request. Cancelling an
// approved comp_off booking reverses its ledger consumption; the
// restored credit is spendable only if its grants have not expired in
// the meantime.
func (s *Service) Cancel(ctx context.Context, requestID string, actor ledger.EmployeeID, note string) (*Request, error) {
	req, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: leave request %s", ledger.ErrRecordNotFound, requestID)
	}
	if req.Status != StatusPending && req.Status != StatusApproved {
		return nil, fmt.Errorf("%w: leave request %s already %s", ledger.ErrConflict, requestID, req.Status)
	}

	if req.Status == StatusApproved && req.ConsumptionID != "" {
		reason := note
		if reason == "" {
			reason = fmt.Sprintf("Leave request %s cancelled", requestID)
		}
		if _, err := s.Resolver.ReverseConsumption(ctx, req.EmployeeID, req.ConsumptionID, reason); err != nil {
			return nil, err
		}
	}

	from := req.Status
	req.Status = StatusCancelled
	req.ManagerNote = note
	req.DecidedBy = actor
	req.DecidedAt = s.Now().UTC()
	if err := s.Store.DecideRequest(ctx, *req, from); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) pending(ctx context.Context, requestID string) (*Request, error) {
	req, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: leave request %s", ledger.ErrRecordNotFound, requestID)
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: leave request %s already %s", ledger.ErrConflict, requestID, req.Status)
	}
	return req, nil
}
