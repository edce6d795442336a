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

func newTestEngine(t *testing.T) (*compoff.Engine, *memstore.Memory) {
	t.Helper()
	store := memstore.NewMemory()
	engine := compoff.NewEngine(store, store)
	engine.Now = func() time.Time {
		return time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	}
	return engine, store
}

func addEmployee(t *testing.T, store *memstore.Memory, id string) ledger.EmployeeID {
	t.Helper()
	empID := ledger.EmployeeID(id)
	err := store.SaveEmployee(context.Background(), ledger.Employee{
		ID:       empID,
		Name:     "Test " + id,
		Email:    id + "@example.com",
		HireDate: ledger.NewDate(2023, time.January, 1),
	})
	require.NoError(t, err)
	return empID
}

// =============================================================================
// EXPIRY RULE TESTS
// =============================================================================

func TestExpiryOf_EndOfFollowingMonth(t *testing.T) {
	cases := []struct {
		earned  ledger.Date
		expires ledger.Date
	}{
		{ledger.NewDate(2024, time.January, 15), ledger.NewDate(2024, time.February, 29)}, // leap year
		{ledger.NewDate(2024, time.January, 1), ledger.NewDate(2024, time.February, 29)},
		{ledger.NewDate(2024, time.January, 31), ledger.NewDate(2024, time.February, 29)},
		{ledger.NewDate(2023, time.January, 15), ledger.NewDate(2023, time.February, 28)},
		{ledger.NewDate(2024, time.December, 5), ledger.NewDate(2025, time.January, 31)},
		{ledger.NewDate(2024, time.March, 31), ledger.NewDate(2024, time.April, 30)},
	}
	for _, tc := range cases {
		got := compoff.ExpiryOf(tc.earned)
		assert.True(t, got.Equal(tc.expires),
			"earned %s: expected expiry %s, got %s", tc.earned, tc.expires, got)
	}
}

// =============================================================================
// ACCRUAL TESTS
// =============================================================================

func TestEarnCredit_MintsOneDayGrant(t *testing.T) {
	// GIVEN: A registered employee
	// WHEN: A credit is earned for working Jan 15
	// THEN: A 1-day grant exists, expiring end of February

	engine, store := newTestEngine(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")

	grant, err := engine.EarnCredit(ctx, emp, ledger.NewDate(2024, time.January, 15), "Worked Saturday release")
	require.NoError(t, err)

	assert.True(t, grant.Amount.Equal(ledger.DaysFromInt(1)))
	assert.True(t, grant.ExpiresOn.Equal(ledger.NewDate(2024, time.February, 29)))
	assert.Equal(t, "Worked Saturday release", grant.SourceNote)

	grants, err := store.Grants(ctx, emp)
	require.NoError(t, err)
	require.Len(t, grants, 1)
}

func TestEarnCredit_DefaultNote(t *testing.T) {
	engine, store := newTestEngine(t)
	emp := addEmployee(t, store, "emp-1")

	grant, err := engine.EarnCredit(context.Background(), emp, ledger.NewDate(2024, time.January, 15), "")
	require.NoError(t, err)
	assert.Equal(t, "Earned by working on 2024-01-15", grant.SourceNote)
}

func TestEarnCredit_DuplicateDay_Rejected(t *testing.T) {
	// GIVEN: A credit already earned for Jan 15
	// WHEN: Earning again for the same day
	// THEN: DuplicateAccrualError naming the existing grant

	engine, store := newTestEngine(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	day := ledger.NewDate(2024, time.January, 15)

	first, err := engine.EarnCredit(ctx, emp, day, "")
	require.NoError(t, err)

	_, err = engine.EarnCredit(ctx, emp, day, "")
	require.Error(t, err)
	var dup *ledger.DuplicateAccrualError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.ID, dup.ExistingGrantID)
	assert.ErrorIs(t, err, ledger.ErrDuplicateAccrual)
}

func TestEarnCredit_SameDayDifferentEmployees_BothSucceed(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	a := addEmployee(t, store, "emp-a")
	b := addEmployee(t, store, "emp-b")
	day := ledger.NewDate(2024, time.January, 15)

	_, err := engine.EarnCredit(ctx, a, day, "")
	assert.NoError(t, err)
	_, err = engine.EarnCredit(ctx, b, day, "")
	assert.NoError(t, err)
}

func TestEarnCredit_UnknownEmployee(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.EarnCredit(context.Background(), "ghost", ledger.NewDate(2024, time.January, 15), "")
	assert.ErrorIs(t, err, ledger.ErrEmployeeNotFound)
}

// =============================================================================
// REVOCATION TESTS
// =============================================================================

func TestRevokeGrant_ThenRegrantSameDay(t *testing.T) {
	// GIVEN: A grant for Jan 15, later revoked
	// WHEN: Earning again for Jan 15
	// THEN: The new grant succeeds; the revoked one no longer blocks

	engine, store := newTestEngine(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")
	day := ledger.NewDate(2024, time.January, 15)

	grant, err := engine.EarnCredit(ctx, emp, day, "")
	require.NoError(t, err)

	_, err = engine.RevokeGrant(ctx, emp, grant.ID, "entered by mistake")
	require.NoError(t, err)

	regrant, err := engine.EarnCredit(ctx, emp, day, "")
	require.NoError(t, err)
	assert.NotEqual(t, grant.ID, regrant.ID)
}

func TestRevokeGrant_AlreadyConsumed_Rejected(t *testing.T) {
	// GIVEN: A grant fully consumed
	// WHEN: Revoking it
	// THEN: InsufficientBalanceError; history is not rewritten

	engine, store := newTestEngine(t)
	ctx := context.Background()
	emp := addEmployee(t, store, "emp-1")

	grant, err := engine.EarnCredit(ctx, emp, ledger.NewDate(2024, time.January, 15), "")
	require.NoError(t, err)

	resolver := compoff.NewResolver(store)
	_, err = resolver.Allocate(ctx, emp, ledger.NewDate(2024, time.January, 20), ledger.DaysFromInt(1), "leave-1", "")
	require.NoError(t, err)

	_, err = engine.RevokeGrant(ctx, emp, grant.ID, "")
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}

func TestRevokeGrant_Unknown(t *testing.T) {
	engine, store := newTestEngine(t)
	emp := addEmployee(t, store, "emp-1")

	_, err := engine.RevokeGrant(context.Background(), emp, "no-such-grant", "")
	assert.ErrorIs(t, err, ledger.ErrRecordNotFound)
}

func TestRevokeGrant_RetriesAfterLedgerTailMoves(t *testing.T) {
	// GIVEN: A store whose first reversal append lands on a moved tail
	// WHEN: Revoking a grant
	// THEN: The revocation succeeds on the re-read, in two attempts

	mem := memstore.NewMemory()
	ctx := context.Background()
	emp := addEmployee(t, mem, "emp-1")

	shaky := &shakyStore{Memory: mem, rejects: 1}
	engine := compoff.NewEngine(shaky, mem)

	grant, err := engine.EarnCredit(ctx, emp, ledger.NewDate(2024, time.January, 15), "")
	require.NoError(t, err)

	_, err = engine.RevokeGrant(ctx, emp, grant.ID, "entered by mistake")
	require.NoError(t, err)
	assert.Equal(t, 2, shaky.attempts)

	revs, err := mem.Reversals(ctx, emp)
	require.NoError(t, err)
	assert.Len(t, revs, 1)
}

func TestRevokeGrant_LedgerTailKeepsMoving_Conflict(t *testing.T) {
	mem := memstore.NewMemory()
	ctx := context.Background()
	emp := addEmployee(t, mem, "emp-1")

	shaky := &shakyStore{Memory: mem, rejects: 2}
	engine := compoff.NewEngine(shaky, mem)

	grant, err := engine.EarnCredit(ctx, emp, ledger.NewDate(2024, time.January, 15), "")
	require.NoError(t, err)

	_, err = engine.RevokeGrant(ctx, emp, grant.ID, "")
	assert.ErrorIs(t, err, ledger.ErrConflict)

	revs, err := mem.Reversals(ctx, emp)
	require.NoError(t, err)
	assert.Empty(t, revs)
}
