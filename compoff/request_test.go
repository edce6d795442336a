package compoff_test

import (
	"context"
	"testing"
	"time"

	"github.com/rosterly/comp-ledger/compoff"
	"github.com/rosterly/comp-ledger/ledger"
	memstore "github.com/rosterly/comp-ledger/ledger/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// memRequests is a throwaway RequestStore for workflow tests.
type memRequests struct {
	byID  map[string]compoff.EarnRequest
	order []string
}

func newMemRequests() *memRequests {
	return &memRequests{byID: make(map[string]compoff.EarnRequest)}
}

func (m *memRequests) SaveEarnRequest(_ context.Context, req compoff.EarnRequest) error {
	if _, ok := m.byID[req.ID]; !ok {
		m.order = append(m.order, req.ID)
	}
	m.byID[req.ID] = req
	return nil
}

func (m *memRequests) GetEarnRequest(_ context.Context, id string) (*compoff.EarnRequest, error) {
	req, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (m *memRequests) ListEarnRequests(_ context.Context, employeeID ledger.EmployeeID, status compoff.RequestStatus) ([]compoff.EarnRequest, error) {
	var out []compoff.EarnRequest
	for _, id := range m.order {
		req := m.byID[id]
		if employeeID != "" && req.EmployeeID != employeeID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func newTestWorkflow(t *testing.T) (*compoff.Workflow, *memstore.Memory) {
	t.Helper()
	engine, store := newTestEngine(t)
	wf := compoff.NewWorkflow(engine, newMemRequests())
	wf.Now = engine.Now
	return wf, store
}

// =============================================================================
// WORKFLOW TESTS
// =============================================================================

func TestWorkflow_SubmitApprove_MintsGrant(t *testing.T) {
	// GIVEN: A pending earn request for Jan 15
	// WHEN: A manager approves it
	// THEN: The request carries the minted grant and the credit exists

	wf, store := newTestWorkflow(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	mgr := addEmployee(t, store, "mgr-1")

	req, err := wf.Submit(ctx, emp, ledger.NewDate(2024, time.January, 15), "Worked release weekend")
	require.NoError(t, err)
	assert.Equal(t, compoff.RequestPending, req.Status)

	decided, err := wf.Approve(ctx, req.ID, mgr, "confirmed with attendance")
	require.NoError(t, err)
	assert.Equal(t, compoff.RequestApproved, decided.Status)
	assert.Equal(t, mgr, decided.DecidedBy)
	require.NotEmpty(t, decided.GrantID)

	grants, err := store.Grants(ctx, emp)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, decided.GrantID, grants[0].ID)
	assert.Equal(t, "Worked release weekend", grants[0].SourceNote)
}

func TestWorkflow_Reject_NoGrant(t *testing.T) {
	wf, store := newTestWorkflow(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	mgr := addEmployee(t, store, "mgr-1")

	req, err := wf.Submit(ctx, emp, ledger.NewDate(2024, time.January, 15), "")
	require.NoError(t, err)

	decided, err := wf.Reject(ctx, req.ID, mgr, "schedule shows a regular shift")
	require.NoError(t, err)
	assert.Equal(t, compoff.RequestRejected, decided.Status)

	grants, err := store.Grants(ctx, emp)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestWorkflow_Submit_DuplicateDay_Rejected(t *testing.T) {
	// GIVEN: A grant already minted for Jan 15
	// WHEN: Submitting a new request for Jan 15
	// THEN: Rejected up front with the duplicate-accrual error

	wf, store := newTestWorkflow(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")

	_, err := wf.Engine.EarnCredit(ctx, emp, ledger.NewDate(2024, time.January, 15), "")
	require.NoError(t, err)

	_, err = wf.Submit(ctx, emp, ledger.NewDate(2024, time.January, 15), "")
	assert.ErrorIs(t, err, ledger.ErrDuplicateAccrual)
}

func TestWorkflow_Approve_RaceToSameDay_SecondFails(t *testing.T) {
	// GIVEN: Two pending requests for the same day (both submitted
	// before either was decided)
	// WHEN: Both are approved
	// THEN: The second approval fails and its request stays pending

	wf, store := newTestWorkflow(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	mgr := addEmployee(t, store, "mgr-1")
	day := ledger.NewDate(2024, time.January, 15)

	r1, err := wf.Submit(ctx, emp, day, "")
	require.NoError(t, err)
	r2, err := wf.Submit(ctx, emp, day, "")
	require.NoError(t, err)

	_, err = wf.Approve(ctx, r1.ID, mgr, "")
	require.NoError(t, err)

	_, err = wf.Approve(ctx, r2.ID, mgr, "")
	require.ErrorIs(t, err, ledger.ErrDuplicateAccrual)

	stale, err := wf.Requests.GetEarnRequest(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, compoff.RequestPending, stale.Status)
}

func TestWorkflow_Approve_AlreadyDecided_Conflict(t *testing.T) {
	wf, store := newTestWorkflow(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	mgr := addEmployee(t, store, "mgr-1")

	req, err := wf.Submit(ctx, emp, ledger.NewDate(2024, time.January, 15), "")
	require.NoError(t, err)
	_, err = wf.Reject(ctx, req.ID, mgr, "")
	require.NoError(t, err)

	_, err = wf.Approve(ctx, req.ID, mgr, "")
	assert.ErrorIs(t, err, ledger.ErrConflict)
}

func TestWorkflow_Approve_UnknownRequest(t *testing.T) {
	wf, _ := newTestWorkflow(t)

	_, err := wf.Approve(context.Background(), "no-such-request", "mgr-1", "")
	assert.ErrorIs(t, err, ledger.ErrRecordNotFound)
}
