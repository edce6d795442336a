/*
seed.go - Demo dataset loader

PURPOSE:
  Populates the database with a small, realistic team so the UI and API
  can be demonstrated without hand-entering data. The dataset is anchored
  on the current date, so the tracking card, monthly breakdown, and
  statistics screens always show recent activity.

WHAT IT CREATES:
  - One manager and three employees
  - Earn requests in various states (approved, pending, rejected)
  - An old grant that has lapsed, plus a sweep so the forfeit is recorded
  - Paid, unpaid, and comp-off leave requests, one of which debits the ledger
  - Annual leave allotments for the current year

NOTE:
  Seeding resets the database. Only use in development/demo environments.

SEE ALSO:
  - server.go: POST /api/admin/seed-demo route
*/
package api

import (
	"context"
	"net/http"

	"github.com/rosterly/comp-ledger/leave"
	"github.com/rosterly/comp-ledger/ledger"
)

// SeedSummaryDTO reports what the demo loader created.
type SeedSummaryDTO struct {
	Employees      int    `json:"employees"`
	GrantsMinted   int    `json:"grants_minted"`
	EarnRequests   int    `json:"earn_requests"`
	LeaveRequests  int    `json:"leave_requests"`
	ForfeitsSwept  int    `json:"forfeits_swept"`
	ManagerActorID string `json:"manager_actor_id"`
}

// SeedDemo resets the database and loads the demo dataset.
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may seed demo data", nil)
		return
	}

	summary, err := h.loadDemoData(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed demo data", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) loadDemoData(ctx context.Context) (*SeedSummaryDTO, error) {
	if err := h.Store.Reset(ctx); err != nil {
		return nil, err
	}

	today := h.today()
	lastMonth := today.StartOfMonth().AddMonths(-1)
	threeMonthsAgo := today.StartOfMonth().AddMonths(-3)
	hireDate := ledger.NewDate(today.Year()-2, today.Month(), 1)

	manager := ledger.Employee{
		ID: "mgr-asha", Name: "Asha Nair", Email: "asha.nair@rosterly.dev",
		HireDate: hireDate, IsManager: true,
	}
	employees := []ledger.Employee{
		manager,
		{ID: "emp-ravi", Name: "Ravi Kumar", Email: "ravi.kumar@rosterly.dev", HireDate: hireDate},
		{ID: "emp-meera", Name: "Meera Pillai", Email: "meera.pillai@rosterly.dev", HireDate: hireDate},
		{ID: "emp-dev", Name: "Dev Joshi", Email: "dev.joshi@rosterly.dev", HireDate: hireDate},
	}
	for _, emp := range employees {
		if err := h.Store.SaveEmployee(ctx, emp); err != nil {
			return nil, err
		}
	}

	summary := &SeedSummaryDTO{Employees: len(employees), ManagerActorID: string(manager.ID)}

	// Annual allotments for the current year.
	allotments := []leave.Allotment{
		{EmployeeID: "emp-ravi", Year: today.Year(), AnnualEntitlement: ledger.DaysFromInt(18)},
		{EmployeeID: "emp-meera", Year: today.Year(), AnnualEntitlement: ledger.DaysFromInt(24)},
	}
	for _, a := range allotments {
		if err := h.Store.SaveAllotment(ctx, a); err != nil {
			return nil, err
		}
	}

	// Approved earn requests: Ravi worked two weekend days last month,
	// both still inside their use-by window.
	for _, workDate := range []ledger.Date{lastMonth.AddDays(5), lastMonth.AddDays(12)} {
		req, err := h.Workflow.Submit(ctx, "emp-ravi", workDate, "Weekend release support")
		if err != nil {
			return nil, err
		}
		summary.EarnRequests++
		if _, err := h.Workflow.Approve(ctx, req.ID, manager.ID, "Confirmed on the roster"); err != nil {
			return nil, err
		}
		summary.GrantsMinted++
	}

	// One request still waiting on the manager, one turned down.
	if _, err := h.Workflow.Submit(ctx, "emp-ravi", lastMonth.AddDays(19), "On-call escalation"); err != nil {
		return nil, err
	}
	summary.EarnRequests++
	rejected, err := h.Workflow.Submit(ctx, "emp-meera", lastMonth.AddDays(20), "Worked during office holiday")
	if err != nil {
		return nil, err
	}
	summary.EarnRequests++
	if _, err := h.Workflow.Reject(ctx, rejected.ID, manager.ID, "Was not on the holiday roster"); err != nil {
		return nil, err
	}

	// Dev earned a credit months ago and never used it, so the sweep
	// below records the forfeit.
	lapsed, err := h.Workflow.Submit(ctx, "emp-dev", threeMonthsAgo.AddDays(8), "Inventory weekend")
	if err != nil {
		return nil, err
	}
	summary.EarnRequests++
	if _, err := h.Workflow.Approve(ctx, lapsed.ID, manager.ID, ""); err != nil {
		return nil, err
	}
	summary.GrantsMinted++

	// Leave requests: an approved comp-off day for Ravi (debits the
	// ledger), an approved paid stretch and a pending unpaid half day for
	// Meera, and a rejected paid day for Dev.
	compOff, err := h.Leave.Submit(ctx, leave.Request{
		EmployeeID: "emp-ravi", Type: leave.TypeCompOff, Duration: leave.FullDay,
		StartDate: today, EndDate: today, Reason: "Recovering the weekend",
	})
	if err != nil {
		return nil, err
	}
	summary.LeaveRequests++
	if _, err := h.Leave.Approve(ctx, compOff.ID, manager.ID, ""); err != nil {
		return nil, err
	}

	paid, err := h.Leave.Submit(ctx, leave.Request{
		EmployeeID: "emp-meera", Type: leave.TypePaid, Duration: leave.FullDay,
		StartDate: lastMonth.AddDays(7), EndDate: lastMonth.AddDays(9), Reason: "Family trip",
	})
	if err != nil {
		return nil, err
	}
	summary.LeaveRequests++
	if _, err := h.Leave.Approve(ctx, paid.ID, manager.ID, "Enjoy"); err != nil {
		return nil, err
	}

	if _, err := h.Leave.Submit(ctx, leave.Request{
		EmployeeID: "emp-meera", Type: leave.TypeUnpaid, Duration: leave.HalfDayMorning,
		StartDate: today.AddDays(7), EndDate: today.AddDays(7), Reason: "Appointment",
	}); err != nil {
		return nil, err
	}
	summary.LeaveRequests++

	declined, err := h.Leave.Submit(ctx, leave.Request{
		EmployeeID: "emp-dev", Type: leave.TypePaid, Duration: leave.FullDay,
		StartDate: today.AddDays(14), EndDate: today.AddDays(14), Reason: "Long weekend",
	})
	if err != nil {
		return nil, err
	}
	summary.LeaveRequests++
	if _, err := h.Leave.Reject(ctx, declined.ID, manager.ID, "Release week, need cover"); err != nil {
		return nil, err
	}

	// Record Dev's lapsed credit in the audit trail.
	sweep, err := h.Sweeper.Sweep(ctx, today)
	if err != nil {
		return nil, err
	}
	summary.ForfeitsSwept = sweep.RecordsWritten

	return summary, nil
}
