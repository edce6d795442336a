/*
aggregate.go - Balance summary and monthly breakdown

PURPOSE:
  The two read projections the workforce screens render. Both are pure
  derivations over a View and an as-of date: earned minus used minus
  expired, with expiry computed from grant dates alone. The advisory
  expiry records play no part here.

  Available is returned as raw arithmetic and may be negative if the
  ledger holds compensating events that post-date a spend. Clamping for
  display is the transport layer's concern, not ours.
*/
package compoff

import (
	"context"
	"fmt"
	"sort"

	"github.com/rosterly/comp-ledger/ledger"
)

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is the point-in-time balance of one employee.
type Summary struct {
	EmployeeID ledger.EmployeeID
	AsOf       ledger.Date
	Earned     ledger.Amount
	Used       ledger.Amount
	Expired    ledger.Amount
	Available  ledger.Amount // Earned - Used - Expired, unclamped
}

// Aggregator computes read projections over the ledger.
type Aggregator struct {
	Store ledger.Store
}

func NewAggregator(store ledger.Store) *Aggregator {
	return &Aggregator{Store: store}
}

// Summarize derives the employee's balance as of a date.
func (a *Aggregator) Summarize(ctx context.Context, employeeID ledger.EmployeeID, asOf ledger.Date) (*Summary, error) {
	v, _, err := LoadView(ctx, a.Store, employeeID)
	if err != nil {
		return nil, err
	}
	return summarize(v, employeeID, asOf), nil
}

func summarize(v *View, employeeID ledger.EmployeeID, asOf ledger.Date) *Summary {
	earned := v.EarnedThrough(asOf)
	used := v.UsedThrough(asOf)
	expired := v.ExpiredThrough(asOf)
	return &Summary{
		EmployeeID: employeeID,
		AsOf:       asOf,
		Earned:     earned,
		Used:       used,
		Expired:    expired,
		Available:  earned.Sub(used).Sub(expired),
	}
}

// =============================================================================
// MONTHLY BREAKDOWN
// =============================================================================

// MonthDetail is one ledger line within a month row.
type MonthDetail struct {
	Date  ledger.Date
	Type  string // "earned", "used", "expired"
	Notes string
}

// MonthRow groups a month's activity. Credits earned in the month share
// one use-by date, so the row carries it; Expired is what lapsed unspent
// during the month, which comes from the previous month's credits.
type MonthRow struct {
	Month      string // "YYYY-MM"
	Earned     ledger.Amount
	Used       ledger.Amount
	Available  ledger.Amount // unexpired remainder of this month's credits, at asOf
	Expired    ledger.Amount
	ExpiryDate ledger.Date // use-by date of credits earned this month
	Details    []MonthDetail
}

// MonthlyBreakdown derives per-month rows for [from, to]. Months with
// no ledger activity are omitted. Consumptions count toward the month
// they were taken in; a lapsed remainder counts toward the month its
// use-by date falls in.
func (a *Aggregator) MonthlyBreakdown(ctx context.Context, employeeID ledger.EmployeeID, from, to, asOf ledger.Date) ([]MonthRow, error) {
	v, _, err := LoadView(ctx, a.Store, employeeID)
	if err != nil {
		return nil, err
	}

	var rows []MonthRow
	for _, first := range ledger.MonthsInRange(from, to) {
		row := buildMonthRow(v, first, asOf)
		if row != nil {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

func buildMonthRow(v *View, monthStart ledger.Date, asOf ledger.Date) *MonthRow {
	monthEnd := monthStart.EndOfMonth()
	expiryDate := ExpiryOf(monthStart)

	row := &MonthRow{
		Month:      monthStart.MonthKey(),
		Earned:     ledger.ZeroDays(),
		Used:       ledger.ZeroDays(),
		Available:  ledger.ZeroDays(),
		Expired:    ledger.ZeroDays(),
		ExpiryDate: expiryDate,
	}

	for _, g := range v.Grants {
		if g.EarnedOn.Before(monthStart) || g.EarnedOn.After(monthEnd) {
			continue
		}
		row.Earned = row.Earned.Add(v.EffectiveAmount(g))
		row.Available = row.Available.Add(v.RemainingAt(g, asOf))
		row.Details = append(row.Details, MonthDetail{
			Date:  g.EarnedOn,
			Type:  "earned",
			Notes: g.SourceNote,
		})
	}

	// Forfeits land in the month the use-by date falls in.
	for _, g := range v.Grants {
		if g.ExpiresOn.Before(monthStart) || g.ExpiresOn.After(monthEnd) {
			continue
		}
		if !asOf.After(g.ExpiresOn) {
			continue
		}
		rem := v.Remainder(g)
		if !rem.IsPositive() {
			continue
		}
		row.Expired = row.Expired.Add(rem)
		row.Details = append(row.Details, MonthDetail{
			Date:  g.ExpiresOn,
			Type:  "expired",
			Notes: fmt.Sprintf("%s day(s) expired unused", rem),
		})
	}

	for _, c := range v.Consumptions {
		if v.IsReversed(c.ID) {
			continue
		}
		if c.ConsumedOn.Before(monthStart) || c.ConsumedOn.After(monthEnd) {
			continue
		}
		row.Used = row.Used.Add(c.Amount)
		note := c.Note
		if note == "" {
			note = fmt.Sprintf("Used %s day(s)", c.Amount)
		}
		row.Details = append(row.Details, MonthDetail{
			Date:  c.ConsumedOn,
			Type:  "used",
			Notes: note,
		})
	}

	if len(row.Details) == 0 {
		return nil
	}

	sort.SliceStable(row.Details, func(i, j int) bool {
		return row.Details[i].Date.Before(row.Details[j].Date)
	})
	return row
}
