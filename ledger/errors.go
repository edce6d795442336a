/*
errors.go - Centralized error types for the ledger

PURPOSE:
  All sentinel and structured errors in one place. Callers classify with
  errors.Is / errors.As; the API layer maps classes to HTTP statuses.

ERROR CATEGORIES:
  1. Business-rule errors - insufficient balance, duplicate accrual
  2. Consistency errors   - concurrent ledger modification
  3. Lookup errors        - unknown employee or record
  4. Access errors        - cross-employee access by a non-manager
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientBalance is returned when a debit exceeds the
	// employee's unexpired remaining credit.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrDuplicateAccrual is returned when a work date already has an
	// active grant for the employee.
	ErrDuplicateAccrual = errors.New("duplicate accrual for work date")

	// ErrConcurrentModification is returned by the store when the
	// employee's ledger tail moved between read and append.
	ErrConcurrentModification = errors.New("concurrent ledger modification")

	// ErrConflict is surfaced to callers after a concurrent conflict
	// persisted through the internal retry. Safe to retry.
	ErrConflict = errors.New("conflict, retry the request")

	// ErrEmployeeNotFound is returned for an unknown employee.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRecordNotFound is returned for an unknown grant, consumption
	// or request.
	ErrRecordNotFound = errors.New("record not found")

	// ErrForbidden is returned when a non-manager touches another
	// employee's records.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyReversed is returned when reversing an already-reversed
	// consumption.
	ErrAlreadyReversed = errors.New("consumption already reversed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError reports the shortage detail.
type InsufficientBalanceError struct {
	EmployeeID EmployeeID
	Requested  Amount
	Available  Amount
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s: requested %s, available %s",
		e.EmployeeID, e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// DuplicateAccrualError reports which grant already covers the work date.
type DuplicateAccrualError struct {
	EmployeeID      EmployeeID
	EarnedOn        Date
	ExistingGrantID GrantID
}

func (e *DuplicateAccrualError) Error() string {
	return fmt.Sprintf("duplicate accrual: %s already has a grant for %s (grant %s)",
		e.EmployeeID, e.EarnedOn, e.ExistingGrantID)
}

func (e *DuplicateAccrualError) Unwrap() error { return ErrDuplicateAccrual }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable reports whether the operation might succeed if repeated.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification) || errors.Is(err, ErrConflict)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrRecordNotFound)
}
