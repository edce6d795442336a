/*
handlers.go - HTTP API handlers for the comp-off ledger

PURPOSE:
  Exposes the credit ledger and leave workflows via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain
  logic.

ENDPOINTS:
  Comp-off tracking:
    GET  /api/comp-off/tracking             Balance summary card
    GET  /api/comp-off/monthly-breakdown    Month-by-month table
    GET  /api/comp-off/balance              Scalar available days

  Earn requests:
    POST /api/comp-off-requests             Submit earn request
    GET  /api/comp-off-requests             List (own; manager: all)
    PUT  /api/comp-off/{id}/approve         Mint the credit
    PUT  /api/comp-off/{id}/reject          Close without credit
    POST /api/comp-off/grants/{id}/revoke   Attendance correction

  Leave:
    POST /api/leave-requests                Book paid/unpaid/comp_off
    GET  /api/leave-requests                List
    PUT  /api/leave-requests/{id}/approve   comp_off debits the ledger
    PUT  /api/leave-requests/{id}/reject
    PUT  /api/leave-requests/{id}/cancel    Reverses an approved debit
    GET  /api/leave-statistics              Own stats
    GET  /api/leave-statistics/employee/{id} Manager-only

  Overtime:
    POST /api/overtime-requests             Book planned extra hours
    GET  /api/overtime-requests             List (own; manager: all)
    PUT  /api/overtime-requests/{id}/approve|reject
    POST /api/overtime-worked               Log a day's actual hours
    GET  /api/overtime-worked               List
    PUT  /api/overtime-worked/{id}/approve|reject
    GET  /api/overtime/tracking             Derived monthly hours card

  Employees / admin:
    GET/POST /api/employees, GET /api/employees/{id}
    POST /api/admin/expiry-sweep            Manual advisory sweep
    POST /api/admin/seed-demo               Demo dataset

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 403: Role rules (employee acting outside their own records)
  - 404: Employee or record not found
  - 409: Duplicate accrual, decided requests, write conflicts
  - 422: Insufficient balance
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - actor.go: Caller identity and role rules
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rosterly/comp-ledger/compoff"
	"github.com/rosterly/comp-ledger/leave"
	"github.com/rosterly/comp-ledger/ledger"
	"github.com/rosterly/comp-ledger/overtime"
	"github.com/rosterly/comp-ledger/store/sqlite"
	"github.com/shopspring/decimal"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Engine     *compoff.Engine
	Resolver   *compoff.Resolver
	Workflow   *compoff.Workflow
	Sweeper    *compoff.Sweeper
	Aggregator *compoff.Aggregator
	Leave      *leave.Service
	Stats      *leave.Statistics
	Overtime   *overtime.Service

	Now func() time.Time
}

// NewHandler wires the domain services over one store.
func NewHandler(store *sqlite.Store, defaultEntitlement ledger.Amount) *Handler {
	engine := compoff.NewEngine(store, store)
	resolver := compoff.NewResolver(store)
	return &Handler{
		Store:      store,
		Engine:     engine,
		Resolver:   resolver,
		Workflow:   compoff.NewWorkflow(engine, store),
		Sweeper:    compoff.NewSweeper(store, store),
		Aggregator: compoff.NewAggregator(store),
		Leave:      leave.NewService(store, store, resolver),
		Stats:      leave.NewStatistics(store, defaultEntitlement),
		Overtime:   overtime.NewService(store, store),
		Now:        time.Now,
	}
}

func (h *Handler) today() ledger.Date {
	return ledger.DateOf(h.Now().UTC())
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := ledger.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	hireDate, err := ledger.ParseDate(req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}

	emp := ledger.Employee{
		ID:        ledger.EmployeeID(req.ID),
		Name:      req.Name,
		Email:     req.Email,
		HireDate:  hireDate,
		IsManager: req.IsManager,
		CreatedAt: h.Now().UTC(),
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// COMP-OFF TRACKING HANDLERS
// =============================================================================

// subjectEmployee resolves which employee's records the request is
// about: the employee_id query param when present, otherwise the actor.
// Employees may only target themselves.
func (h *Handler) subjectEmployee(w http.ResponseWriter, r *http.Request) (ledger.EmployeeID, bool) {
	actor := ActorFrom(r.Context())
	subject := actor.ID
	if q := r.URL.Query().Get("employee_id"); q != "" {
		subject = ledger.EmployeeID(q)
	}
	if subject != actor.ID && !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may view other employees' records", nil)
		return "", false
	}
	return subject, true
}

func (h *Handler) asOfParam(r *http.Request) (ledger.Date, error) {
	q := r.URL.Query().Get("as_of")
	if q == "" {
		return h.today(), nil
	}
	return ledger.ParseDate(q)
}

// GetTracking returns the balance summary card.
func (h *Handler) GetTracking(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subjectEmployee(w, r)
	if !ok {
		return
	}
	asOf, err := h.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return
	}

	sum, err := h.Aggregator.Summarize(r.Context(), subject, asOf)
	if err != nil {
		writeDomainError(w, "Failed to compute tracking", err)
		return
	}
	writeJSON(w, http.StatusOK, toTrackingDTO(sum))
}

// GetBalance returns the scalar available balance.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subjectEmployee(w, r)
	if !ok {
		return
	}
	asOf, err := h.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return
	}

	sum, err := h.Aggregator.Summarize(r.Context(), subject, asOf)
	if err != nil {
		writeDomainError(w, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{
		EmployeeID:    string(subject),
		AsOf:          asOf.String(),
		AvailableDays: sum.Available.Max(ledger.ZeroDays()).Float64(),
	})
}

// GetMonthlyBreakdown returns the month-by-month activity table. The
// range defaults to the as-of calendar year.
func (h *Handler) GetMonthlyBreakdown(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subjectEmployee(w, r)
	if !ok {
		return
	}
	asOf, err := h.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return
	}

	from := ledger.NewDate(asOf.Year(), time.January, 1)
	to := ledger.NewDate(asOf.Year(), time.December, 31)
	if q := r.URL.Query().Get("from"); q != "" {
		if from, err = ledger.ParseDate(q); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from format (use YYYY-MM-DD)", err)
			return
		}
	}
	if q := r.URL.Query().Get("to"); q != "" {
		if to, err = ledger.ParseDate(q); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to format (use YYYY-MM-DD)", err)
			return
		}
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not precede from", nil)
		return
	}

	rows, err := h.Aggregator.MonthlyBreakdown(r.Context(), subject, from, to, asOf)
	if err != nil {
		writeDomainError(w, "Failed to compute monthly breakdown", err)
		return
	}

	dtos := make([]MonthRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toMonthRowDTO(row)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// EARN REQUEST HANDLERS
// =============================================================================

// SubmitEarnRequest files an earn request. Employees claim for
// themselves; a manager may name another employee in the body to file
// on their behalf.
func (h *Handler) SubmitEarnRequest(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())

	var req SubmitEarnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	workDate, err := ledger.ParseDate(req.CompOffDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid comp_off_date format (use YYYY-MM-DD)", err)
		return
	}

	subject := actor.ID
	if req.EmployeeID != "" && ledger.EmployeeID(req.EmployeeID) != actor.ID {
		if !actor.IsManager() {
			writeError(w, http.StatusForbidden, "Only managers may file for another employee", nil)
			return
		}
		subject = ledger.EmployeeID(req.EmployeeID)
	}

	earnReq, err := h.Workflow.Submit(r.Context(), subject, workDate, req.Reason)
	if err != nil {
		writeDomainError(w, "Failed to submit earn request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEarnRequestDTO(*earnReq))
}

// ListEarnRequests lists earn requests: employees see their own,
// managers see everyone's (optionally filtered by employee_id).
func (h *Handler) ListEarnRequests(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())

	employeeID := actor.ID
	if actor.IsManager() {
		employeeID = ledger.EmployeeID(r.URL.Query().Get("employee_id"))
	}
	status := compoff.RequestStatus(r.URL.Query().Get("status"))

	reqs, err := h.Workflow.Requests.ListEarnRequests(r.Context(), employeeID, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list earn requests", err)
		return
	}

	dtos := make([]EarnRequestDTO, len(reqs))
	for i, req := range reqs {
		dtos[i] = toEarnRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveEarnRequest mints the credit. Manager only.
func (h *Handler) ApproveEarnRequest(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may approve earn requests", nil)
		return
	}

	var body DecideRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	req, err := h.Workflow.Approve(r.Context(), chi.URLParam(r, "id"), actor.ID, body.Note)
	if err != nil {
		writeDomainError(w, "Failed to approve earn request", err)
		return
	}
	metricGrantsMinted.Inc()
	writeJSON(w, http.StatusOK, toEarnRequestDTO(*req))
}

// RejectEarnRequest closes the request without a credit. Manager only.
func (h *Handler) RejectEarnRequest(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may reject earn requests", nil)
		return
	}

	var body DecideRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	req, err := h.Workflow.Reject(r.Context(), chi.URLParam(r, "id"), actor.ID, body.Note)
	if err != nil {
		writeDomainError(w, "Failed to reject earn request", err)
		return
	}
	writeJSON(w, http.StatusOK, toEarnRequestDTO(*req))
}

// RevokeGrant forfeits a grant's unconsumed remainder after an
// attendance correction. Manager only.
func (h *Handler) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may revoke grants", nil)
		return
	}

	var body RevokeGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	grantID := ledger.GrantID(chi.URLParam(r, "id"))
	rec, err := h.Engine.RevokeGrant(r.Context(), ledger.EmployeeID(body.EmployeeID), grantID, body.Reason)
	if err != nil {
		writeDomainError(w, "Failed to revoke grant", err)
		return
	}
	metricReversals.WithLabelValues(string(ledger.ReversalGrant)).Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"reversal_id": rec.ID,
		"grant_id":    string(grantID),
		"amount":      rec.Amount.Float64(),
	})
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// SubmitLeaveRequest books leave for the calling employee.
func (h *Handler) SubmitLeaveRequest(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())

	var body SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	startDate, err := ledger.ParseDate(body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	endDate := startDate
	if body.EndDate != "" {
		if endDate, err = ledger.ParseDate(body.EndDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
			return
		}
	}

	req, err := h.Leave.Submit(r.Context(), leave.Request{
		EmployeeID: actor.ID,
		Type:       leave.Type(body.Type),
		Duration:   leave.Duration(body.Duration),
		StartDate:  startDate,
		EndDate:    endDate,
		Reason:     body.Reason,
	})
	if err != nil {
		writeDomainError(w, "Failed to submit leave request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(*req))
}

// ListLeaveRequests lists bookings: employees their own, managers all.
func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())

	employeeID := actor.ID
	if actor.IsManager() {
		employeeID = ledger.EmployeeID(r.URL.Query().Get("employee_id"))
	}
	status := leave.Status(r.URL.Query().Get("status"))

	year := 0
	if q := r.URL.Query().Get("year"); q != "" {
		var err error
		if year, err = strconv.Atoi(q); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
	}

	reqs, err := h.Leave.Store.ListRequests(r.Context(), employeeID, status, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave requests", err)
		return
	}

	dtos := make([]LeaveRequestDTO, len(reqs))
	for i, req := range reqs {
		dtos[i] = toLeaveRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveLeaveRequest decides a booking; comp_off debits the ledger.
// Manager only.
func (h *Handler) ApproveLeaveRequest(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may approve leave requests", nil)
		return
	}

	var body DecideRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	req, err := h.Leave.Approve(r.Context(), chi.URLParam(r, "id"), actor.ID, body.Note)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			metricAllocationFailures.WithLabelValues("insufficient_balance").Inc()
		} else if errors.Is(err, ledger.ErrConflict) {
			metricAllocationFailures.WithLabelValues("conflict").Inc()
		}
		writeDomainError(w, "Failed to approve leave request", err)
		return
	}
	if req.Type == leave.TypeCompOff {
		metricDaysConsumed.Add(req.Days().Float64())
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*req))
}

// RejectLeaveRequest closes a booking with no ledger effect. Manager
// only.
func (h *Handler) RejectLeaveRequest(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may reject leave requests", nil)
		return
	}

	var body DecideRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	req, err := h.Leave.Reject(r.Context(), chi.URLParam(r, "id"), actor.ID, body.Note)
	if err != nil {
		writeDomainError(w, "Failed to reject leave request", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*req))
}

// CancelLeaveRequest withdraws a booking. Employees may cancel their
// own; managers anyone's. An approved comp_off booking gets its
// consumption reversed.
func (h *Handler) CancelLeaveRequest(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	requestID := chi.URLParam(r, "id")

	req, err := h.Leave.Store.GetRequest(r.Context(), requestID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leave request", err)
		return
	}
	if req == nil {
		writeError(w, http.StatusNotFound, "Leave request not found", nil)
		return
	}
	if req.EmployeeID != actor.ID && !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may cancel other employees' requests", nil)
		return
	}

	var body DecideRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	cancelled, err := h.Leave.Cancel(r.Context(), requestID, actor.ID, body.Note)
	if err != nil {
		writeDomainError(w, "Failed to cancel leave request", err)
		return
	}
	if cancelled.ConsumptionID != "" {
		metricReversals.WithLabelValues(string(ledger.ReversalConsumption)).Inc()
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*cancelled))
}

// GetLeaveStatistics returns the calling employee's statistics.
func (h *Handler) GetLeaveStatistics(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	h.leaveStatistics(w, r, actor.ID)
}

// GetEmployeeLeaveStatistics returns any employee's statistics. Manager
// only.
func (h *Handler) GetEmployeeLeaveStatistics(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may view other employees' statistics", nil)
		return
	}
	h.leaveStatistics(w, r, ledger.EmployeeID(chi.URLParam(r, "id")))
}

func (h *Handler) leaveStatistics(w http.ResponseWriter, r *http.Request, employeeID ledger.EmployeeID) {
	year := h.today().Year()
	if q := r.URL.Query().Get("year"); q != "" {
		var err error
		if year, err = strconv.Atoi(q); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
	}

	emp, err := h.Store.GetEmployee(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	stats, err := h.Stats.Stats(r.Context(), employeeID, year)
	if err != nil {
		writeDomainError(w, "Failed to compute leave statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveStatisticsDTO(stats))
}

// =============================================================================
// OVERTIME HANDLERS
// =============================================================================

// SubmitOvertimeRequest books planned extra hours for the calling
// employee. The hours come from the time range, server-side.
func (h *Handler) SubmitOvertimeRequest(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())

	var body SubmitOvertimeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	requestDate, err := ledger.ParseDate(body.RequestDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request_date format (use YYYY-MM-DD)", err)
		return
	}

	req, err := h.Overtime.Submit(r.Context(), actor.ID, requestDate, body.FromTime, body.ToTime, body.Reason)
	if err != nil {
		writeDomainError(w, "Failed to submit overtime request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOvertimeRequestDTO(*req))
}

// ListOvertimeRequests lists requests: employees their own, managers
// all (optionally filtered by employee_id).
func (h *Handler) ListOvertimeRequests(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())

	employeeID := actor.ID
	if actor.IsManager() {
		employeeID = ledger.EmployeeID(r.URL.Query().Get("employee_id"))
	}
	status := overtime.Status(r.URL.Query().Get("status"))

	reqs, err := h.Overtime.Store.ListOvertimeRequests(r.Context(), employeeID, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list overtime requests", err)
		return
	}

	dtos := make([]OvertimeRequestDTO, len(reqs))
	for i, req := range reqs {
		dtos[i] = toOvertimeRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveOvertimeRequest books the hours into the month's allocation.
// Manager only.
func (h *Handler) ApproveOvertimeRequest(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may approve overtime requests", nil)
		return
	}

	var body DecideRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	req, err := h.Overtime.Approve(r.Context(), chi.URLParam(r, "id"), actor.ID, body.Note)
	if err != nil {
		writeDomainError(w, "Failed to approve overtime request", err)
		return
	}
	writeJSON(w, http.StatusOK, toOvertimeRequestDTO(*req))
}

// RejectOvertimeRequest closes the request. Manager only.
func (h *Handler) RejectOvertimeRequest(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may reject overtime requests", nil)
		return
	}

	var body DecideRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	req, err := h.Overtime.Reject(r.Context(), chi.URLParam(r, "id"), actor.ID, body.Note)
	if err != nil {
		writeDomainError(w, "Failed to reject overtime request", err)
		return
	}
	writeJSON(w, http.StatusOK, toOvertimeRequestDTO(*req))
}

// LogOvertimeWorked records a day's actual extra hours for the calling
// employee, pending manager review.
func (h *Handler) LogOvertimeWorked(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())

	var body LogOvertimeWorkedRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	workDate, err := ledger.ParseDate(body.WorkDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid work_date format (use YYYY-MM-DD)", err)
		return
	}

	entry, err := h.Overtime.LogWorked(r.Context(), actor.ID, workDate,
		decimal.NewFromFloat(body.OvertimeHours), body.Notes)
	if err != nil {
		writeDomainError(w, "Failed to log overtime", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOvertimeWorkedDTO(*entry))
}

// ListOvertimeWorked lists work logs: employees their own, managers all.
func (h *Handler) ListOvertimeWorked(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())

	employeeID := actor.ID
	if actor.IsManager() {
		employeeID = ledger.EmployeeID(r.URL.Query().Get("employee_id"))
	}
	status := overtime.Status(r.URL.Query().Get("status"))

	entries, err := h.Overtime.Store.ListOvertimeWorked(r.Context(), employeeID, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list overtime logs", err)
		return
	}

	dtos := make([]OvertimeWorkedDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = toOvertimeWorkedDTO(entry)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveOvertimeWorked counts the logged hours as used. Manager only.
func (h *Handler) ApproveOvertimeWorked(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may review overtime logs", nil)
		return
	}

	entry, err := h.Overtime.ApproveWorked(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeDomainError(w, "Failed to approve overtime log", err)
		return
	}
	writeJSON(w, http.StatusOK, toOvertimeWorkedDTO(*entry))
}

// RejectOvertimeWorked discards the logged hours. Manager only.
func (h *Handler) RejectOvertimeWorked(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may review overtime logs", nil)
		return
	}

	entry, err := h.Overtime.RejectWorked(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeDomainError(w, "Failed to reject overtime log", err)
		return
	}
	writeJSON(w, http.StatusOK, toOvertimeWorkedDTO(*entry))
}

// GetOvertimeTracking returns the derived monthly hours card. The month
// defaults to the current one; pass month=YYYY-MM to pick another.
func (h *Handler) GetOvertimeTracking(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subjectEmployee(w, r)
	if !ok {
		return
	}

	year, month := h.today().Year(), h.today().Month()
	if q := r.URL.Query().Get("month"); q != "" {
		parsed, err := time.Parse("2006-01", q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month format (use YYYY-MM)", err)
			return
		}
		year, month = parsed.Year(), parsed.Month()
	}

	card, err := h.Overtime.Tracking(r.Context(), subject, year, month)
	if err != nil {
		writeDomainError(w, "Failed to compute overtime tracking", err)
		return
	}
	writeJSON(w, http.StatusOK, toOvertimeTrackingDTO(card))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// TriggerSweep runs the advisory expiry sweep now. Manager only.
func (h *Handler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if !actor.IsManager() {
		writeError(w, http.StatusForbidden, "Only managers may trigger sweeps", nil)
		return
	}

	asOf, err := h.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return
	}

	res, err := h.Sweeper.Sweep(r.Context(), asOf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Sweep failed", err)
		return
	}
	metricSweepRuns.Inc()
	metricSweepForfeited.Add(res.DaysForfeited.Float64())

	writeJSON(w, http.StatusOK, SweepResultDTO{
		AsOf:             asOf.String(),
		EmployeesScanned: res.EmployeesScanned,
		RecordsWritten:   res.RecordsWritten,
		DaysForfeited:    res.DaysForfeited.Float64(),
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	dto := ErrorDTO{Error: message}
	if err != nil {
		dto.Details = err.Error()
	}
	writeJSON(w, status, dto)
}

// writeDomainError maps ledger error classes to HTTP status codes.
// Retryable conflicts surface as 409 so a ledger-tail race that beats
// the internal retry never reads as a server fault.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrInsufficientBalance):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrDuplicateAccrual),
		errors.Is(err, ledger.ErrAlreadyReversed),
		ledger.IsRetryable(err):
		status = http.StatusConflict
	case ledger.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, leave.ErrInvalid), errors.Is(err, overtime.ErrInvalid):
		status = http.StatusBadRequest
	}
	writeError(w, status, message, err)
}
