/*
stats.go - Leave statistics projection

PURPOSE:
  The numbers the dashboard renders: paid entitlement vs taken, unpaid
  taken, and a per-month paid/unpaid/total table for the year. Only
  approved requests count. Comp-off days count toward the overall total
  but not toward the paid allotment; their balance lives in the credit
  ledger, not here.
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/rosterly/comp-ledger/ledger"
)

// =============================================================================
// TYPES
// =============================================================================

// MonthStat is one row of the per-month table.
type MonthStat struct {
	Month  string // "YYYY-MM"
	Paid   ledger.Amount
	Unpaid ledger.Amount
	Total  ledger.Amount // paid + unpaid + comp_off
}

// YearStats is the statistics payload for one employee and year.
type YearStats struct {
	EmployeeID       ledger.EmployeeID
	Year             int
	TotalPaidLeave   ledger.Amount // annual entitlement
	TakenPaidLeave   ledger.Amount
	AvailablePaid    ledger.Amount // entitlement - taken, unclamped
	TakenUnpaidLeave ledger.Amount
	TakenCompOff     ledger.Amount
	TotalLeavesTaken ledger.Amount
	MonthlyBreakdown []MonthStat
}

// Statistics derives YearStats from the request store.
type Statistics struct {
	Store Store

	// DefaultEntitlement applies when no allotment row exists for the
	// employee and year.
	DefaultEntitlement ledger.Amount
}

func NewStatistics(store Store, defaultEntitlement ledger.Amount) *Statistics {
	return &Statistics{Store: store, DefaultEntitlement: defaultEntitlement}
}

// =============================================================================
// DERIVATION
// =============================================================================

// Stats computes the employee's leave statistics for a calendar year.
// A request spanning a year boundary counts whole toward the year it
// starts in.
func (s *Statistics) Stats(ctx context.Context, employeeID ledger.EmployeeID, year int) (*YearStats, error) {
	entitlement := s.DefaultEntitlement
	if allot, err := s.Store.GetAllotment(ctx, employeeID, year); err != nil {
		return nil, err
	} else if allot != nil {
		entitlement = allot.AnnualEntitlement
	}

	requests, err := s.Store.ListRequests(ctx, employeeID, StatusApproved, year)
	if err != nil {
		return nil, err
	}

	stats := &YearStats{
		EmployeeID:       employeeID,
		Year:             year,
		TotalPaidLeave:   entitlement,
		TakenPaidLeave:   ledger.ZeroDays(),
		TakenUnpaidLeave: ledger.ZeroDays(),
		TakenCompOff:     ledger.ZeroDays(),
		TotalLeavesTaken: ledger.ZeroDays(),
	}

	byMonth := make(map[string]*MonthStat)
	for _, req := range requests {
		days := req.Days()
		stats.TotalLeavesTaken = stats.TotalLeavesTaken.Add(days)

		switch req.Type {
		case TypePaid:
			stats.TakenPaidLeave = stats.TakenPaidLeave.Add(days)
		case TypeUnpaid:
			stats.TakenUnpaidLeave = stats.TakenUnpaidLeave.Add(days)
		case TypeCompOff:
			stats.TakenCompOff = stats.TakenCompOff.Add(days)
		}

		key := req.StartDate.MonthKey()
		row, ok := byMonth[key]
		if !ok {
			row = &MonthStat{
				Month:  key,
				Paid:   ledger.ZeroDays(),
				Unpaid: ledger.ZeroDays(),
				Total:  ledger.ZeroDays(),
			}
			byMonth[key] = row
		}
		switch req.Type {
		case TypePaid:
			row.Paid = row.Paid.Add(days)
		case TypeUnpaid:
			row.Unpaid = row.Unpaid.Add(days)
		}
		row.Total = row.Total.Add(days)
	}

	stats.AvailablePaid = entitlement.Sub(stats.TakenPaidLeave)

	for m := time.January; m <= time.December; m++ {
		key := fmt.Sprintf("%04d-%02d", year, int(m))
		if row, ok := byMonth[key]; ok {
			stats.MonthlyBreakdown = append(stats.MonthlyBreakdown, *row)
		}
	}
	return stats, nil
}
