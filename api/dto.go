/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DISPLAY CLAMP:
  available_days is clamped at zero HERE and only here. The aggregator
  hands back raw arithmetic; a negative available (compensating events
  posted after a spend) is real ledger state that audits must see, but
  no employee screen should render "-0.5 days".

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - compoff/aggregate.go: The projections these wrap
*/
package api

import (
	"time"

	"github.com/rosterly/comp-ledger/compoff"
	"github.com/rosterly/comp-ledger/leave"
	"github.com/rosterly/comp-ledger/ledger"
	"github.com/rosterly/comp-ledger/overtime"
)

// =============================================================================
// EMPLOYEE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	HireDate  string `json:"hire_date"`
	IsManager bool   `json:"is_manager"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	HireDate  string `json:"hire_date"`
	IsManager bool   `json:"is_manager"`
}

func toEmployeeDTO(e ledger.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        string(e.ID),
		Name:      e.Name,
		Email:     e.Email,
		HireDate:  e.HireDate.String(),
		IsManager: e.IsManager,
		CreatedAt: formatTime(e.CreatedAt),
	}
}

// =============================================================================
// COMP-OFF TRACKING TYPES
// =============================================================================

// TrackingDTO is the balance summary card.
type TrackingDTO struct {
	EmployeeID    string  `json:"employee_id"`
	AsOf          string  `json:"as_of"`
	EarnedDays    float64 `json:"earned_days"`
	UsedDays      float64 `json:"used_days"`
	ExpiredDays   float64 `json:"expired_days"`
	AvailableDays float64 `json:"available_days"`
}

func toTrackingDTO(s *compoff.Summary) TrackingDTO {
	return TrackingDTO{
		EmployeeID:    string(s.EmployeeID),
		AsOf:          s.AsOf.String(),
		EarnedDays:    s.Earned.Float64(),
		UsedDays:      s.Used.Float64(),
		ExpiredDays:   s.Expired.Float64(),
		AvailableDays: s.Available.Max(ledger.ZeroDays()).Float64(),
	}
}

// BalanceDTO is the scalar balance response.
type BalanceDTO struct {
	EmployeeID    string  `json:"employee_id"`
	AsOf          string  `json:"as_of"`
	AvailableDays float64 `json:"available_days"`
}

// MonthDetailDTO is one ledger line inside a month row.
type MonthDetailDTO struct {
	Date  string `json:"date"`
	Type  string `json:"type"`
	Notes string `json:"notes"`
}

// MonthRowDTO is one row of the monthly breakdown table.
type MonthRowDTO struct {
	Month      string           `json:"month"`
	Earned     float64          `json:"earned"`
	Used       float64          `json:"used"`
	Available  float64          `json:"available"`
	Expired    float64          `json:"expired"`
	ExpiryDate string           `json:"expiry_date"`
	Details    []MonthDetailDTO `json:"details"`
}

func toMonthRowDTO(row compoff.MonthRow) MonthRowDTO {
	details := make([]MonthDetailDTO, len(row.Details))
	for i, d := range row.Details {
		details[i] = MonthDetailDTO{
			Date:  d.Date.String(),
			Type:  d.Type,
			Notes: d.Notes,
		}
	}
	return MonthRowDTO{
		Month:      row.Month,
		Earned:     row.Earned.Float64(),
		Used:       row.Used.Float64(),
		Available:  row.Available.Max(ledger.ZeroDays()).Float64(),
		Expired:    row.Expired.Float64(),
		ExpiryDate: row.ExpiryDate.String(),
		Details:    details,
	}
}

// =============================================================================
// EARN REQUEST TYPES
// =============================================================================

// SubmitEarnRequest files a claim for a worked non-scheduled day.
// EmployeeID lets a manager file on another employee's behalf; other
// callers leave it empty and claim for themselves.
type SubmitEarnRequest struct {
	CompOffDate string `json:"comp_off_date"`
	Reason      string `json:"reason"`
	EmployeeID  string `json:"employee_id,omitempty"`
}

// DecideRequest carries the manager's note on approve/reject/cancel.
type DecideRequest struct {
	Note string `json:"note"`
}

// EarnRequestDTO represents an earn request in API responses.
type EarnRequestDTO struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	WorkDate    string `json:"work_date"`
	Reason      string `json:"reason"`
	Status      string `json:"status"`
	ManagerNote string `json:"manager_note,omitempty"`
	DecidedBy   string `json:"decided_by,omitempty"`
	GrantID     string `json:"grant_id,omitempty"`
	CreatedAt   string `json:"created_at"`
	DecidedAt   string `json:"decided_at,omitempty"`
}

func toEarnRequestDTO(r compoff.EarnRequest) EarnRequestDTO {
	return EarnRequestDTO{
		ID:          r.ID,
		EmployeeID:  string(r.EmployeeID),
		WorkDate:    r.WorkDate.String(),
		Reason:      r.Reason,
		Status:      string(r.Status),
		ManagerNote: r.ManagerNote,
		DecidedBy:   string(r.DecidedBy),
		GrantID:     string(r.GrantID),
		CreatedAt:   formatTime(r.CreatedAt),
		DecidedAt:   formatTime(r.DecidedAt),
	}
}

// RevokeGrantRequest is the manager's attendance-correction payload.
type RevokeGrantRequest struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

// =============================================================================
// LEAVE TYPES
// =============================================================================

// SubmitLeaveRequest books leave of any type.
type SubmitLeaveRequest struct {
	Type      string `json:"type"`
	Duration  string `json:"duration"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// LeaveRequestDTO represents a leave request in API responses.
type LeaveRequestDTO struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	Type          string  `json:"type"`
	Duration      string  `json:"duration"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Days          float64 `json:"days"`
	Reason        string  `json:"reason"`
	Status        string  `json:"status"`
	ManagerNote   string  `json:"manager_note,omitempty"`
	DecidedBy     string  `json:"decided_by,omitempty"`
	ConsumptionID string  `json:"consumption_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
	DecidedAt     string  `json:"decided_at,omitempty"`
}

func toLeaveRequestDTO(r leave.Request) LeaveRequestDTO {
	return LeaveRequestDTO{
		ID:            r.ID,
		EmployeeID:    string(r.EmployeeID),
		Type:          string(r.Type),
		Duration:      string(r.Duration),
		StartDate:     r.StartDate.String(),
		EndDate:       r.EndDate.String(),
		Days:          r.Days().Float64(),
		Reason:        r.Reason,
		Status:        string(r.Status),
		ManagerNote:   r.ManagerNote,
		DecidedBy:     string(r.DecidedBy),
		ConsumptionID: string(r.ConsumptionID),
		CreatedAt:     formatTime(r.CreatedAt),
		DecidedAt:     formatTime(r.DecidedAt),
	}
}

// MonthStatDTO is one row of the leave-statistics monthly table.
type MonthStatDTO struct {
	Month  string  `json:"month"`
	Paid   float64 `json:"paid"`
	Unpaid float64 `json:"unpaid"`
	Total  float64 `json:"total"`
}

// LeaveStatisticsDTO is the leave-statistics payload.
type LeaveStatisticsDTO struct {
	EmployeeID         string         `json:"employee_id"`
	Year               int            `json:"year"`
	TotalPaidLeave     float64        `json:"total_paid_leave"`
	TakenPaidLeave     float64        `json:"taken_paid_leave"`
	AvailablePaidLeave float64        `json:"available_paid_leave"`
	TakenUnpaidLeave   float64        `json:"taken_unpaid_leave"`
	TakenCompOff       float64        `json:"taken_comp_off"`
	TotalLeavesTaken   float64        `json:"total_leaves_taken"`
	MonthlyBreakdown   []MonthStatDTO `json:"monthly_breakdown"`
}

func toLeaveStatisticsDTO(s *leave.YearStats) LeaveStatisticsDTO {
	months := make([]MonthStatDTO, len(s.MonthlyBreakdown))
	for i, m := range s.MonthlyBreakdown {
		months[i] = MonthStatDTO{
			Month:  m.Month,
			Paid:   m.Paid.Float64(),
			Unpaid: m.Unpaid.Float64(),
			Total:  m.Total.Float64(),
		}
	}
	return LeaveStatisticsDTO{
		EmployeeID:         string(s.EmployeeID),
		Year:               s.Year,
		TotalPaidLeave:     s.TotalPaidLeave.Float64(),
		TakenPaidLeave:     s.TakenPaidLeave.Float64(),
		AvailablePaidLeave: s.AvailablePaid.Max(ledger.ZeroDays()).Float64(),
		TakenUnpaidLeave:   s.TakenUnpaidLeave.Float64(),
		TakenCompOff:       s.TakenCompOff.Float64(),
		TotalLeavesTaken:   s.TotalLeavesTaken.Float64(),
		MonthlyBreakdown:   months,
	}
}

// =============================================================================
// OVERTIME TYPES
// =============================================================================

// SubmitOvertimeRequest books a wall-clock range of planned extra
// hours. The server derives the hours from the range; a client-computed
// value is ignored.
type SubmitOvertimeRequest struct {
	RequestDate string `json:"request_date"`
	FromTime    string `json:"from_time"`
	ToTime      string `json:"to_time"`
	Reason      string `json:"reason"`
}

// LogOvertimeWorkedRequest records one day's actual extra hours.
type LogOvertimeWorkedRequest struct {
	WorkDate      string  `json:"work_date"`
	OvertimeHours float64 `json:"overtime_hours"`
	Notes         string  `json:"notes"`
}

// OvertimeRequestDTO represents a planned-overtime request.
type OvertimeRequestDTO struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	RequestDate  string  `json:"request_date"`
	FromTime     string  `json:"from_time"`
	ToTime       string  `json:"to_time"`
	RequestHours float64 `json:"request_hours"`
	Reason       string  `json:"reason"`
	Status       string  `json:"status"`
	ManagerNotes string  `json:"manager_notes,omitempty"`
	DecidedBy    string  `json:"decided_by,omitempty"`
	CreatedAt    string  `json:"created_at"`
	DecidedAt    string  `json:"decided_at,omitempty"`
}

func toOvertimeRequestDTO(r overtime.Request) OvertimeRequestDTO {
	return OvertimeRequestDTO{
		ID:           r.ID,
		EmployeeID:   string(r.EmployeeID),
		RequestDate:  r.RequestDate.String(),
		FromTime:     r.FromTime,
		ToTime:       r.ToTime,
		RequestHours: r.Hours.InexactFloat64(),
		Reason:       r.Reason,
		Status:       string(r.Status),
		ManagerNotes: r.ManagerNote,
		DecidedBy:    string(r.DecidedBy),
		CreatedAt:    formatTime(r.CreatedAt),
		DecidedAt:    formatTime(r.DecidedAt),
	}
}

// OvertimeWorkedDTO represents one day's overtime log.
type OvertimeWorkedDTO struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	WorkDate       string  `json:"work_date"`
	OvertimeHours  float64 `json:"overtime_hours"`
	ApprovalStatus string  `json:"approval_status"`
	Notes          string  `json:"notes,omitempty"`
	DecidedBy      string  `json:"decided_by,omitempty"`
	CreatedAt      string  `json:"created_at"`
	DecidedAt      string  `json:"decided_at,omitempty"`
}

func toOvertimeWorkedDTO(e overtime.Worked) OvertimeWorkedDTO {
	return OvertimeWorkedDTO{
		ID:             e.ID,
		EmployeeID:     string(e.EmployeeID),
		WorkDate:       e.WorkDate.String(),
		OvertimeHours:  e.Hours.InexactFloat64(),
		ApprovalStatus: string(e.Status),
		Notes:          e.Note,
		DecidedBy:      string(e.DecidedBy),
		CreatedAt:      formatTime(e.CreatedAt),
		DecidedAt:      formatTime(e.DecidedAt),
	}
}

// OvertimeTrackingDTO is the derived monthly allocation card.
// remaining_hours gets the same display clamp as available_days.
type OvertimeTrackingDTO struct {
	EmployeeID     string  `json:"employee_id"`
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	AllocatedHours float64 `json:"allocated_hours"`
	UsedHours      float64 `json:"used_hours"`
	RemainingHours float64 `json:"remaining_hours"`
}

func toOvertimeTrackingDTO(t *overtime.MonthlyTracking) OvertimeTrackingDTO {
	remaining := t.Remaining.InexactFloat64()
	if remaining < 0 {
		remaining = 0
	}
	return OvertimeTrackingDTO{
		EmployeeID:     string(t.EmployeeID),
		Year:           t.Year,
		Month:          int(t.Month),
		AllocatedHours: t.Allocated.InexactFloat64(),
		UsedHours:      t.Used.InexactFloat64(),
		RemainingHours: remaining,
	}
}

// =============================================================================
// ADMIN TYPES
// =============================================================================

// SweepResultDTO reports what an expiry sweep recorded.
type SweepResultDTO struct {
	AsOf             string  `json:"as_of"`
	EmployeesScanned int     `json:"employees_scanned"`
	RecordsWritten   int     `json:"records_written"`
	DaysForfeited    float64 `json:"days_forfeited"`
}

// ErrorDTO is the uniform error envelope.
type ErrorDTO struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
