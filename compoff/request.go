/*
request.go - Earn-request approval workflow

PURPOSE:
  An employee who worked a non-scheduled day files a request; a manager
  approves or rejects it. Approval is the only path that mints a credit
  grant, so the duplicate-accrual guard in the engine is the final word
  even when two requests for the same day slip through review.
*/
package compoff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rosterly/comp-ledger/ledger"
)

// =============================================================================
// TYPES
// =============================================================================

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// EarnRequest is a pending claim to a credit for a worked day.
type EarnRequest struct {
	ID          string
	EmployeeID  ledger.EmployeeID
	WorkDate    ledger.Date
	Reason      string
	Status      RequestStatus
	ManagerNote string
	DecidedBy   ledger.EmployeeID
	GrantID     ledger.GrantID // set on approval
	CreatedAt   time.Time
	DecidedAt   time.Time
}

// RequestStore persists earn requests. SaveEarnRequest upserts by ID.
type RequestStore interface {
	SaveEarnRequest(ctx context.Context, req EarnRequest) error
	GetEarnRequest(ctx context.Context, id string) (*EarnRequest, error)
	ListEarnRequests(ctx context.Context, employeeID ledger.EmployeeID, status RequestStatus) ([]EarnRequest, error)
}

// =============================================================================
// WORKFLOW
// =============================================================================

// Workflow ties the request lifecycle to the accrual engine.
type Workflow struct {
	Engine   *Engine
	Requests RequestStore
	Now      func() time.Time
}

func NewWorkflow(engine *Engine, requests RequestStore) *Workflow {
	return &Workflow{Engine: engine, Requests: requests, Now: time.Now}
}

// Submit files a pending earn request. A request for a day that already
// carries an active grant is rejected up front rather than left to fail
// at approval time.
func (w *Workflow) Submit(ctx context.Context, employeeID ledger.EmployeeID, workDate ledger.Date, reason string) (*EarnRequest, error) {
	if err := w.Engine.EnsureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	existing, found, err := w.Engine.ActiveGrantOn(ctx, employeeID, workDate)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, &ledger.DuplicateAccrualError{
			EmployeeID:      employeeID,
			EarnedOn:        workDate,
			ExistingGrantID: existing,
		}
	}

	req := EarnRequest{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		WorkDate:   workDate,
		Reason:     reason,
		Status:     RequestPending,
		CreatedAt:  w.Now().UTC(),
	}
	if err := w.Requests.SaveEarnRequest(ctx, req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Approve grants the credit and marks the request approved. If the
// grant collides with one minted since submission, the duplicate error
// surfaces and the request stays pending.
func (w *Workflow) Approve(ctx context.Context, requestID string, approver ledger.EmployeeID, note string) (*EarnRequest, error) {
	req, err := w.pending(ctx, requestID)
	if err != nil {
		return nil, err
	}

	grant, err := w.Engine.EarnCredit(ctx, req.EmployeeID, req.WorkDate, req.Reason)
	if err != nil {
		return nil, err
	}

	req.Status = RequestApproved
	req.ManagerNote = note
	req.DecidedBy = approver
	req.GrantID = grant.ID
	req.DecidedAt = w.Now().UTC()
	if err := w.Requests.SaveEarnRequest(ctx, *req); err != nil {
		return nil, err
	}
	return req, nil
}

// Reject closes the request without minting a grant.
func (w *Workflow) Reject(ctx context.Context, requestID string, approver ledger.EmployeeID, note string) (*EarnRequest, error) {
	req, err := w.pending(ctx, requestID)
	if err != nil {
		return nil, err
	}

	req.Status = RequestRejected
	req.ManagerNote = note
	req.DecidedBy = approver
	req.DecidedAt = w.Now().UTC()
	if err := w.Requests.SaveEarnRequest(ctx, *req); err != nil {
		return nil, err
	}
	return req, nil
}

func (w *Workflow) pending(ctx context.Context, requestID string) (*EarnRequest, error) {
	req, err := w.Requests.GetEarnRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: earn request %s", ledger.ErrRecordNotFound, requestID)
	}
	if req.Status != RequestPending {
		return nil, fmt.Errorf("%w: earn request %s already %s", ledger.ErrConflict, requestID, req.Status)
	}
	return req, nil
}
