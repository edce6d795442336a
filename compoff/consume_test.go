package compoff_test

import (
	"context"
	"fmt"
	"sync"
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

func newTestResolver(t *testing.T) (*compoff.Resolver, *compoff.Engine, *memstore.Memory) {
	t.Helper()
	engine, store := newTestEngine(t)
	resolver := compoff.NewResolver(store)
	resolver.Now = engine.Now
	return resolver, engine, store
}

func earn(t *testing.T, engine *compoff.Engine, emp ledger.EmployeeID, day ledger.Date) *ledger.CreditGrant {
	t.Helper()
	grant, err := engine.EarnCredit(context.Background(), emp, day, "")
	require.NoError(t, err)
	return grant
}

// =============================================================================
// FIFO ALLOCATION TESTS
// =============================================================================

func TestAllocate_FIFO_OldestGrantFirst(t *testing.T) {
	// GIVEN: Grants earned Jan 10 and Jan 20
	// WHEN: Consuming 1 day on Feb 1
	// THEN: The Jan 10 grant is drawn down, Jan 20 untouched

	resolver, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")

	g1 := earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))
	g2 := earn(t, engine, emp, ledger.NewDate(2024, time.January, 20))

	rec, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.February, 1), ledger.DaysFromInt(1), "leave-1", "comp off")
	require.NoError(t, err)

	require.Len(t, rec.Allocations, 1)
	assert.Equal(t, g1.ID, rec.Allocations[0].GrantID)

	v, _, err := compoff.LoadView(ctx, store, emp)
	require.NoError(t, err)
	assert.True(t, v.Remainder(*g1).IsZero())
	assert.True(t, v.Remainder(*g2).Equal(ledger.DaysFromInt(1)))
}

func TestAllocate_SplitsAcrossGrants(t *testing.T) {
	// GIVEN: Two 1-day grants
	// WHEN: Consuming 1.5 days
	// THEN: First grant fully drawn, second half drawn, in order

	resolver, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")

	g1 := earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))
	g2 := earn(t, engine, emp, ledger.NewDate(2024, time.January, 20))

	rec, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.February, 1), ledger.Days(1.5), "leave-1", "")
	require.NoError(t, err)

	require.Len(t, rec.Allocations, 2)
	assert.Equal(t, g1.ID, rec.Allocations[0].GrantID)
	assert.True(t, rec.Allocations[0].Amount.Equal(ledger.DaysFromInt(1)))
	assert.Equal(t, g2.ID, rec.Allocations[1].GrantID)
	assert.True(t, rec.Allocations[1].Amount.Equal(ledger.Days(0.5)))
}

func TestAllocate_InsufficientBalance_NothingPersisted(t *testing.T) {
	// GIVEN: One 1-day grant
	// WHEN: Consuming 2 days
	// THEN: InsufficientBalanceError; no partial consumption written

	resolver, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))

	_, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.February, 1), ledger.DaysFromInt(2), "leave-1", "")
	require.Error(t, err)
	var insuf *ledger.InsufficientBalanceError
	require.ErrorAs(t, err, &insuf)
	assert.True(t, insuf.Available.Equal(ledger.DaysFromInt(1)))
	assert.True(t, insuf.Requested.Equal(ledger.DaysFromInt(2)))

	cons, err := store.Consumptions(ctx, emp)
	require.NoError(t, err)
	assert.Empty(t, cons, "failed allocation must leave no trace")
}

func TestAllocate_GrantNotUsableBeforeEarnDate(t *testing.T) {
	// GIVEN: A grant earned Jan 20
	// WHEN: Consuming on Jan 15
	// THEN: The grant is not a candidate yet

	resolver, engine, store := newTestResolver(t)
	emp := addEmployee(t, store, "emp-1")
	earn(t, engine, emp, ledger.NewDate(2024, time.January, 20))

	_, err := resolver.Allocate(context.Background(), emp, ledger.NewDate(2024, time.January, 15), ledger.DaysFromInt(1), "leave-1", "")
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}

func TestAllocate_ExpiryDayInclusive(t *testing.T) {
	// GIVEN: A grant earned Jan 15, expiring Feb 29
	// WHEN: Consuming on Feb 29, then again on Mar 1 on a fresh ledger
	// THEN: The expiry day itself spends; the day after forfeits

	resolver, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	earn(t, engine, emp, ledger.NewDate(2024, time.January, 15))

	_, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.February, 29), ledger.DaysFromInt(1), "leave-1", "")
	assert.NoError(t, err, "expiry day is the last usable day")

	emp2 := addEmployee(t, store, "emp-2")
	earn(t, engine, emp2, ledger.NewDate(2024, time.January, 15))

	_, err = resolver.Allocate(ctx, emp2, ledger.NewDate(2024, time.March, 1), ledger.DaysFromInt(1), "leave-2", "")
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance, "day after expiry forfeits the credit")
}

func TestAllocate_RejectsNonPositiveAmount(t *testing.T) {
	resolver, _, store := newTestResolver(t)
	emp := addEmployee(t, store, "emp-1")

	_, err := resolver.Allocate(context.Background(), emp, ledger.NewDate(2024, time.February, 1), ledger.ZeroDays(), "leave-1", "")
	assert.Error(t, err)
}

// =============================================================================
// CONCURRENCY TESTS
// =============================================================================

func TestAllocate_ConcurrentSpend_OnlyOneSucceeds(t *testing.T) {
	// GIVEN: Balance of exactly 1 day
	// WHEN: Two allocations for 1 day race
	// THEN: One succeeds, the other fails on balance; never both

	resolver, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.February, 1), ledger.DaysFromInt(1), "leave", "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 1, succeeded)

	cons, err := store.Consumptions(ctx, emp)
	require.NoError(t, err)
	assert.Len(t, cons, 1)
}

// =============================================================================
// REVERSAL TESTS
// =============================================================================

func TestReverseConsumption_ReleasesAllocations(t *testing.T) {
	// GIVEN: A 1-day consumption against a live grant
	// WHEN: The consumption is reversed
	// THEN: The grant's remainder is restored and spendable again

	resolver, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	g := earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))

	rec, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.February, 1), ledger.DaysFromInt(1), "leave-1", "")
	require.NoError(t, err)

	_, err = resolver.ReverseConsumption(ctx, emp, rec.ID, "leave cancelled")
	require.NoError(t, err)

	v, _, err := compoff.LoadView(ctx, store, emp)
	require.NoError(t, err)
	assert.True(t, v.Remainder(*g).Equal(ledger.DaysFromInt(1)))

	_, err = resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.February, 5), ledger.DaysFromInt(1), "leave-2", "")
	assert.NoError(t, err, "released credit is spendable again")
}

func TestReverseConsumption_Twice_Rejected(t *testing.T) {
	resolver, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))

	rec, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.February, 1), ledger.DaysFromInt(1), "leave-1", "")
	require.NoError(t, err)

	_, err = resolver.ReverseConsumption(ctx, emp, rec.ID, "")
	require.NoError(t, err)

	_, err = resolver.ReverseConsumption(ctx, emp, rec.ID, "")
	assert.ErrorIs(t, err, ledger.ErrAlreadyReversed)
}

func TestReverseConsumption_Unknown(t *testing.T) {
	resolver, _, store := newTestResolver(t)
	emp := addEmployee(t, store, "emp-1")

	_, err := resolver.ReverseConsumption(context.Background(), emp, "no-such-id", "")
	assert.ErrorIs(t, err, ledger.ErrRecordNotFound)
}

// shakyStore wraps the in-memory store and rejects the first N reversal
// appends with ErrConcurrentModification, as if another append advanced
// the ledger tail between the caller's read and its write.
type shakyStore struct {
	*memstore.Memory
	mu       sync.Mutex
	rejects  int
	attempts int
}

func (s *shakyStore) AppendReversal(ctx context.Context, rec ledger.ReversalRecord, expectedSeq int64) error {
	s.mu.Lock()
	s.attempts++
	reject := s.rejects > 0
	if reject {
		s.rejects--
	}
	s.mu.Unlock()
	if reject {
		return fmt.Errorf("append reversal: %w", ledger.ErrConcurrentModification)
	}
	return s.Memory.AppendReversal(ctx, rec, expectedSeq)
}

func TestReverseConsumption_RetriesAfterLedgerTailMoves(t *testing.T) {
	// GIVEN: A store whose first reversal append lands on a moved tail
	// WHEN: Reversing a consumption
	// THEN: The reversal succeeds on the re-read, in two attempts

	mem := memstore.NewMemory()
	ctx := context.Background()
	emp := addEmployee(t, mem, "emp-1")

	engine := compoff.NewEngine(mem, mem)
	earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))

	shaky := &shakyStore{Memory: mem, rejects: 1}
	resolver := compoff.NewResolver(shaky)

	rec, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.February, 1), ledger.DaysFromInt(1), "leave-1", "")
	require.NoError(t, err)

	_, err = resolver.ReverseConsumption(ctx, emp, rec.ID, "leave cancelled")
	require.NoError(t, err)
	assert.Equal(t, 2, shaky.attempts)

	revs, err := mem.Reversals(ctx, emp)
	require.NoError(t, err)
	assert.Len(t, revs, 1)
}

func TestReverseConsumption_LedgerTailKeepsMoving_Conflict(t *testing.T) {
	// GIVEN: A store that rejects both the write and its one retry
	// WHEN: Reversing a consumption
	// THEN: ErrConflict; nothing recorded

	mem := memstore.NewMemory()
	ctx := context.Background()
	emp := addEmployee(t, mem, "emp-1")

	engine := compoff.NewEngine(mem, mem)
	earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))

	shaky := &shakyStore{Memory: mem, rejects: 2}
	resolver := compoff.NewResolver(shaky)

	rec, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.February, 1), ledger.DaysFromInt(1), "leave-1", "")
	require.NoError(t, err)

	_, err = resolver.ReverseConsumption(ctx, emp, rec.ID, "")
	assert.ErrorIs(t, err, ledger.ErrConflict)
	assert.Equal(t, 2, shaky.attempts, "one retry, then give up")

	revs, err := mem.Reversals(ctx, emp)
	require.NoError(t, err)
	assert.Empty(t, revs)
}

func TestReverseConsumption_OnExpiredGrant_CreditStaysForfeit(t *testing.T) {
	// GIVEN: A consumption whose grant has since expired
	// WHEN: The consumption is reversed after the expiry date
	// THEN: The restored remainder is immediately forfeit, not spendable

	resolver, engine, store := newTestResolver(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	earn(t, engine, emp, ledger.NewDate(2024, time.January, 10))

	rec, err := resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.February, 1), ledger.DaysFromInt(1), "leave-1", "")
	require.NoError(t, err)

	_, err = resolver.ReverseConsumption(ctx, emp, rec.ID, "cancelled in March")
	require.NoError(t, err)

	_, err = resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.March, 5), ledger.DaysFromInt(1), "leave-2", "")
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	agg := compoff.NewAggregator(store)
	sum, err := agg.Summarize(ctx, emp, ledger.NewDate(2024, time.March, 5))
	require.NoError(t, err)
	assert.True(t, sum.Used.IsZero())
	assert.True(t, sum.Expired.Equal(ledger.DaysFromInt(1)))
	assert.True(t, sum.Available.IsZero())
}
