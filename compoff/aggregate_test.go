package compoff_test

import (
	"context"
	"testing"
	"time"

	"github.com/rosterly/comp-ledger/compoff"
	"github.com/rosterly/comp-ledger/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SUMMARY TESTS
// =============================================================================

func TestSummarize_EarnedMinusUsedMinusExpired(t *testing.T) {
	// GIVEN: Earn Mar 5, earn Mar 20, use 1 day Apr 1
	// WHEN: Summarizing as of Apr 15
	// THEN: earned=2, used=1, expired=0, available=1

	resolver, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")

	earn(t, engine, emp, ledger.NewDate(2024, time.March, 5))
	earn(t, engine, emp, ledger.NewDate(2024, time.March, 20))
	_, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.April, 1), ledger.DaysFromInt(1), "leave-1", "")
	require.NoError(t, err)

	agg := compoff.NewAggregator(store)
	sum, err := agg.Summarize(ctx, emp, ledger.NewDate(2024, time.April, 15))
	require.NoError(t, err)

	assert.True(t, sum.Earned.Equal(ledger.DaysFromInt(2)))
	assert.True(t, sum.Used.Equal(ledger.DaysFromInt(1)))
	assert.True(t, sum.Expired.IsZero())
	assert.True(t, sum.Available.Equal(ledger.DaysFromInt(1)))
}

func TestSummarize_ExpiryDerivedWithoutSweep(t *testing.T) {
	// GIVEN: A credit earned Mar 5, never used, never swept
	// WHEN: Summarizing as of May 1 (past the Apr 30 expiry)
	// THEN: expired=1 and available=0, purely from grant dates

	_, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	earn(t, engine, emp, ledger.NewDate(2024, time.March, 5))

	agg := compoff.NewAggregator(store)
	sum, err := agg.Summarize(ctx, emp, ledger.NewDate(2024, time.May, 1))
	require.NoError(t, err)

	assert.True(t, sum.Earned.Equal(ledger.DaysFromInt(1)))
	assert.True(t, sum.Expired.Equal(ledger.DaysFromInt(1)))
	assert.True(t, sum.Available.IsZero())
}

func TestSummarize_AsOfBeforeActivity_AllZero(t *testing.T) {
	_, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	earn(t, engine, emp, ledger.NewDate(2024, time.March, 5))

	agg := compoff.NewAggregator(store)
	sum, err := agg.Summarize(ctx, emp, ledger.NewDate(2024, time.February, 1))
	require.NoError(t, err)

	assert.True(t, sum.Earned.IsZero())
	assert.True(t, sum.Used.IsZero())
	assert.True(t, sum.Expired.IsZero())
	assert.True(t, sum.Available.IsZero())
}

// =============================================================================
// MONTHLY BREAKDOWN TESTS
// =============================================================================

func TestMonthlyBreakdown_UsageCountsInTakenMonth(t *testing.T) {
	// GIVEN: Earn Mar 5, use 1 day Apr 1
	// WHEN: Breaking down Mar-Apr as of Apr 15
	// THEN: March row earned=1 used=0; April row earned=0 used=1

	resolver, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")

	earn(t, engine, emp, ledger.NewDate(2024, time.March, 5))
	_, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.April, 1), ledger.DaysFromInt(1), "leave-1", "")
	require.NoError(t, err)

	agg := compoff.NewAggregator(store)
	rows, err := agg.MonthlyBreakdown(ctx, emp,
		ledger.NewDate(2024, time.March, 1), ledger.NewDate(2024, time.April, 30),
		ledger.NewDate(2024, time.April, 15))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	march, april := rows[0], rows[1]
	assert.Equal(t, "2024-03", march.Month)
	assert.True(t, march.Earned.Equal(ledger.DaysFromInt(1)))
	assert.True(t, march.Used.IsZero())
	assert.True(t, march.ExpiryDate.Equal(ledger.NewDate(2024, time.April, 30)))

	assert.Equal(t, "2024-04", april.Month)
	assert.True(t, april.Earned.IsZero())
	assert.True(t, april.Used.Equal(ledger.DaysFromInt(1)))
}

func TestMonthlyBreakdown_ForfeitLandsInUseByMonth(t *testing.T) {
	// GIVEN: Earn Mar 5, never used (use-by date Apr 30)
	// WHEN: Breaking down Mar-Apr as of Apr 15, then as of May 1
	// THEN: Nothing expired while the window is open; once past it, the
	//       April row carries expired=1 and March keeps the earn

	_, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	earn(t, engine, emp, ledger.NewDate(2024, time.March, 5))

	agg := compoff.NewAggregator(store)
	from := ledger.NewDate(2024, time.March, 1)
	to := ledger.NewDate(2024, time.April, 30)

	rows, err := agg.MonthlyBreakdown(ctx, emp, from, to, ledger.NewDate(2024, time.April, 15))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03", rows[0].Month)
	assert.True(t, rows[0].ExpiryDate.Equal(ledger.NewDate(2024, time.April, 30)))
	assert.True(t, rows[0].Expired.IsZero())
	assert.True(t, rows[0].Available.Equal(ledger.DaysFromInt(1)))

	rows, err = agg.MonthlyBreakdown(ctx, emp, from, to, ledger.NewDate(2024, time.May, 1))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	march, april := rows[0], rows[1]
	assert.True(t, march.Earned.Equal(ledger.DaysFromInt(1)))
	assert.True(t, march.Expired.IsZero())
	assert.True(t, march.Available.IsZero())

	assert.Equal(t, "2024-04", april.Month)
	assert.True(t, april.Earned.IsZero())
	assert.True(t, april.Expired.Equal(ledger.DaysFromInt(1)))
	require.Len(t, april.Details, 1)
	assert.Equal(t, "expired", april.Details[0].Type)
	assert.True(t, april.Details[0].Date.Equal(ledger.NewDate(2024, time.April, 30)))
}

func TestMonthlyBreakdown_QuietMonthsOmitted(t *testing.T) {
	_, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))
	earn(t, engine, emp, ledger.NewDate(2024, time.April, 10))

	agg := compoff.NewAggregator(store)
	rows, err := agg.MonthlyBreakdown(ctx, emp,
		ledger.NewDate(2024, time.January, 1), ledger.NewDate(2024, time.June, 30),
		ledger.NewDate(2024, time.April, 15))
	require.NoError(t, err)

	// January's credit lapsed at the end of February, so February has a
	// forfeit row. March, May, and June stay quiet.
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-01", rows[0].Month)
	assert.Equal(t, "2024-02", rows[1].Month)
	assert.True(t, rows[1].Expired.Equal(ledger.DaysFromInt(1)))
	assert.Equal(t, "2024-04", rows[2].Month)
}

func TestMonthlyBreakdown_DetailsSortedByDate(t *testing.T) {
	// GIVEN: Two earns and one use inside March
	// WHEN: Breaking down March
	// THEN: Details appear in date order with their types

	resolver, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")

	earn(t, engine, emp, ledger.NewDate(2024, time.March, 5))
	earn(t, engine, emp, ledger.NewDate(2024, time.March, 20))
	_, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.March, 12), ledger.DaysFromInt(1), "leave-1", "half sprint off")
	require.NoError(t, err)

	agg := compoff.NewAggregator(store)
	rows, err := agg.MonthlyBreakdown(ctx, emp,
		ledger.NewDate(2024, time.March, 1), ledger.NewDate(2024, time.March, 31),
		ledger.NewDate(2024, time.March, 31))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	details := rows[0].Details
	require.Len(t, details, 3)
	assert.Equal(t, "earned", details[0].Type)
	assert.Equal(t, "used", details[1].Type)
	assert.Equal(t, "half sprint off", details[1].Notes)
	assert.Equal(t, "earned", details[2].Type)
}

func TestMonthlyBreakdown_ReversedConsumptionExcluded(t *testing.T) {
	resolver, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")

	earn(t, engine, emp, ledger.NewDate(2024, time.March, 5))
	rec, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.March, 12), ledger.DaysFromInt(1), "leave-1", "")
	require.NoError(t, err)
	_, err = resolver.ReverseConsumption(ctx, emp, rec.ID, "cancelled")
	require.NoError(t, err)

	agg := compoff.NewAggregator(store)
	rows, err := agg.MonthlyBreakdown(ctx, emp,
		ledger.NewDate(2024, time.March, 1), ledger.NewDate(2024, time.March, 31),
		ledger.NewDate(2024, time.March, 31))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Used.IsZero())
}
