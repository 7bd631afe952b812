package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{ErrRegisterNotFound, KindNotFound},
		{ErrSessionNotFound, KindNotFound},
		{ErrTenantMismatch, KindNotFound},
		{ErrRegisterAlreadyOpen, KindConflict},
		{ErrSessionAlreadyClosed, KindConflict},
		{ErrBusy, KindConflict},
		{ErrRegisterInactive, KindValidation},
		{ErrSessionNotOpen, KindValidation},
		{ErrNegativeActualCash, KindValidation},
		{ErrNegativeFloat, KindValidation},
		{ErrInvalidAmount, KindValidation},
		{ErrInvalidReason, KindValidation},
		{ErrInvalidMovementType, KindValidation},
		{ErrInvalidPaymentMethod, KindValidation},
		{ErrRefundExceedsSales, KindValidation},
		{ErrInvariantViolation, KindInvariant},
		{errors.New("driver exploded"), KindInternal},
		{nil, KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, KindOf(tc.err), "KindOf(%v)", tc.err)
	}
}

func TestKindOf_WrappedErrors(t *testing.T) {
	// Repositories wrap store errors around the sentinel; classification must
	// survive the wrapping.
	wrapped := fmt.Errorf("%w: canceling statement due to lock timeout", ErrBusy)
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, Retryable(wrapped))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(ErrBusy))

	// Conflicts are decisions, not retries.
	assert.False(t, Retryable(ErrRegisterAlreadyOpen))
	assert.False(t, Retryable(ErrSessionAlreadyClosed))
	assert.False(t, Retryable(ErrSessionNotFound))
	assert.False(t, Retryable(nil))
}
