package compoff_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rosterly/comp-ledger/compoff"
	"github.com/rosterly/comp-ledger/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SWEEP TESTS
// =============================================================================

func TestSweep_FullyConsumed_NothingToRecord(t *testing.T) {
	// GIVEN: Two credits, both fully consumed before their window closed
	// WHEN: Sweeping as of Mar 1 (both expired Feb 29)
	// THEN: No expiry records written

	resolver, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")

	earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))
	earn(t, engine, emp, ledger.NewDate(2024, time.January, 20))
	_, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.February, 1), ledger.DaysFromInt(2), "leave-1", "")
	require.NoError(t, err)

	sweeper := compoff.NewSweeper(store, store)
	res, err := sweeper.Sweep(ctx, ledger.NewDate(2024, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, res.RecordsWritten)
	assert.True(t, res.DaysForfeited.IsZero())
}

func TestSweep_UnusedGrant_WrittenOnce(t *testing.T) {
	// GIVEN: A credit earned Jan 10, never used
	// WHEN: Sweeping twice as of Mar 1
	// THEN: Exactly one expiry record exists after both sweeps

	_, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	g := earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))

	sweeper := compoff.NewSweeper(store, store)

	res, err := sweeper.Sweep(ctx, ledger.NewDate(2024, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, res.RecordsWritten)
	assert.True(t, res.DaysForfeited.Equal(ledger.DaysFromInt(1)))

	res, err = sweeper.Sweep(ctx, ledger.NewDate(2024, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, res.RecordsWritten, "sweep is idempotent")

	exps, err := store.Expiries(ctx, emp)
	require.NoError(t, err)
	require.Len(t, exps, 1)
	assert.Equal(t, g.ID, exps[0].GrantID)
	assert.True(t, exps[0].ExpiredOn.Equal(ledger.NewDate(2024, time.February, 29)))
}

func TestSweep_NotYetExpired_Skipped(t *testing.T) {
	_, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))

	sweeper := compoff.NewSweeper(store, store)

	// On the expiry day itself the credit is still usable.
	res, err := sweeper.Sweep(ctx, ledger.NewDate(2024, time.February, 29))
	require.NoError(t, err)
	assert.Equal(t, 0, res.RecordsWritten)
}

func TestSweep_BalanceUnchangedBySweep(t *testing.T) {
	// GIVEN: An expired unused credit
	// WHEN: Summarizing before and after the sweep
	// THEN: Identical numbers; the sweep is advisory only

	_, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))

	agg := compoff.NewAggregator(store)
	asOf := ledger.NewDate(2024, time.March, 15)

	before, err := agg.Summarize(ctx, emp, asOf)
	require.NoError(t, err)

	sweeper := compoff.NewSweeper(store, store)
	_, err = sweeper.Sweep(ctx, asOf)
	require.NoError(t, err)

	after, err := agg.Summarize(ctx, emp, asOf)
	require.NoError(t, err)

	assert.True(t, before.Expired.Equal(after.Expired))
	assert.True(t, before.Available.Equal(after.Available))
}

func TestSweep_ConcurrentSweeps_WriteOnce(t *testing.T) {
	// GIVEN: One expired unused credit
	// WHEN: A scheduled sweep and a manual sweep race
	// THEN: Exactly one expiry record exists; one sweep reports the write

	_, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))

	sweeper := compoff.NewSweeper(store, store)
	asOf := ledger.NewDate(2024, time.March, 1)

	var wg sync.WaitGroup
	results := make([]*compoff.SweepResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = sweeper.Sweep(ctx, asOf)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 1, results[0].RecordsWritten+results[1].RecordsWritten)

	exps, err := store.Expiries(ctx, emp)
	require.NoError(t, err)
	assert.Len(t, exps, 1)
}

func TestSweep_ScansAllEmployees(t *testing.T) {
	_, engine, store := newTestResolver(t)
	ctx := context.Background()
	a := addEmployee(t, store, "emp-a")
	b := addEmployee(t, store, "emp-b")
	earn(t, engine, a, ledger.NewDate(2024, time.January, 10))
	earn(t, engine, b, ledger.NewDate(2024, time.January, 12))

	sweeper := compoff.NewSweeper(store, store)
	res, err := sweeper.Sweep(ctx, ledger.NewDate(2024, time.March, 1))
	require.NoError(t, err)

	assert.Equal(t, 2, res.EmployeesScanned)
	assert.Equal(t, 2, res.RecordsWritten)
	assert.True(t, res.DaysForfeited.Equal(ledger.DaysFromInt(2)))
}
