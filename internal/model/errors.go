package model

import "errors"

// Domain errors returned by the session, movement, and register services.
// Handlers translate these into HTTP responses via KindOf; repositories map
// store-level conditions (unique violations, lock timeouts) onto them so the
// service layer never sees raw SQLSTATEs.
var (
	ErrRegisterNotFound = errors.New("register not found")
	ErrRegisterInactive = errors.New("register is inactive")
	// ErrRegisterAlreadyOpen means another open session exists for the
	// register — including the case where a concurrent open won the race.
	ErrRegisterAlreadyOpen = errors.New("register already has an open session")

	ErrSessionNotFound = errors.New("cash session not found")
	ErrSessionNotOpen  = errors.New("cash session is not open")
	// ErrSessionAlreadyClosed is the losing side of a close race, distinct
	// from ErrSessionNotOpen so callers can tell conflict from precondition.
	ErrSessionAlreadyClosed = errors.New("cash session already closed")

	ErrNegativeActualCash   = errors.New("actual cash cannot be negative")
	ErrNegativeFloat        = errors.New("opening float cannot be negative")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidReason        = errors.New("reason must not be empty")
	ErrInvalidMovementType  = errors.New("unrecognized movement type")
	ErrInvalidPaymentMethod = errors.New("payment method must not be empty")
	ErrRefundExceedsSales   = errors.New("refund exceeds recorded sales")

	// ErrTenantMismatch means the resource exists but belongs to another
	// business. Reported as not-found so tenants cannot probe each other.
	ErrTenantMismatch = errors.New("resource does not belong to business")

	// ErrBusy means a lock or transaction could not be acquired within the
	// configured timeout. No partial writes happened; the caller may retry.
	ErrBusy = errors.New("ledger store busy, try again")

	// ErrInvariantViolation flags a structurally impossible state observed at
	// read time (e.g. two OPEN sessions on one register). Never reconciled
	// silently — it means the exclusivity guarantee is broken.
	ErrInvariantViolation = errors.New("ledger invariant violation detected")
)

// ErrorKind buckets domain errors for transport mapping and retry decisions.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInvariant
)

// KindOf classifies err into an ErrorKind. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrRegisterNotFound),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrTenantMismatch):
		return KindNotFound
	case errors.Is(err, ErrRegisterAlreadyOpen),
		errors.Is(err, ErrSessionAlreadyClosed),
		errors.Is(err, ErrBusy):
		return KindConflict
	case errors.Is(err, ErrRegisterInactive),
		errors.Is(err, ErrSessionNotOpen),
		errors.Is(err, ErrNegativeActualCash),
		errors.Is(err, ErrNegativeFloat),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidReason),
		errors.Is(err, ErrInvalidMovementType),
		errors.Is(err, ErrInvalidPaymentMethod),
		errors.Is(err, ErrRefundExceedsSales):
		return KindValidation
	case errors.Is(err, ErrInvariantViolation):
		return KindInvariant
	}
	return KindInternal
}

// Retryable reports whether the operation may be retried as-is. Only lock
// contention qualifies; losing an open/close race is a conflict the caller
// must handle deliberately, not replay.
func Retryable(err error) bool {
	return errors.Is(err, ErrBusy)
}
