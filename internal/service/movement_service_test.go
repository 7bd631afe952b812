package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Manual movements ─────────────────────────────────────────────────────────

func TestRecordMovement_BumpsMatchingBucket(t *testing.T) {
	cases := []struct {
		movType string
		bucket  func(tt dto.SessionTotals) string
	}{
		{"cash_in", func(tt dto.SessionTotals) string { return tt.TotalCashIn.String() }},
		{"cash_out", func(tt dto.SessionTotals) string { return tt.TotalCashOut.String() }},
		{"pay_in", func(tt dto.SessionTotals) string { return tt.TotalPayIn.String() }},
		{"pay_out", func(tt dto.SessionTotals) string { return tt.TotalPayOut.String() }},
	}

	for _, tc := range cases {
		t.Run(tc.movType, func(t *testing.T) {
			e := newEnv()
			ctx := context.Background()
			id, err := e.openSession(ctx, dec("100"))
			require.NoError(t, err)

			mov, err := e.movementSvc.RecordMovement(ctx, e.businessID, e.operatorID, dto.MovementRequest{
				SessionID: id.String(), Type: tc.movType, Amount: dec("25.50"), Reason: "float adjustment",
			})
			require.NoError(t, err)
			assert.Equal(t, tc.movType, mov.Type)
			assert.Equal(t, "25.5", mov.Amount.String())

			sess, err := e.sessions.FindByID(ctx, e.businessID, id)
			require.NoError(t, err)
			totals := dto.SessionTotals{
				TotalCashIn:  sess.TotalCashIn,
				TotalCashOut: sess.TotalCashOut,
				TotalPayIn:   sess.TotalPayIn,
				TotalPayOut:  sess.TotalPayOut,
			}
			assert.Equal(t, "25.5", tc.bucket(totals))
			// Movements never count as transactions.
			assert.Equal(t, 0, sess.TransactionCount)
			// Ledger row stored with positive amount; direction is the type.
			require.Len(t, e.sessions.movements, 1)
			assert.True(t, e.sessions.movements[0].Amount.IsPositive())
		})
	}
}

func TestRecordMovement_Rejections(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	id, err := e.openSession(ctx, dec("100"))
	require.NoError(t, err)

	cases := []struct {
		name string
		req  dto.MovementRequest
		want error
	}{
		{"zero amount", dto.MovementRequest{SessionID: id.String(), Type: "cash_in", Amount: dec("0"), Reason: "x"}, model.ErrInvalidAmount},
		{"negative amount", dto.MovementRequest{SessionID: id.String(), Type: "cash_out", Amount: dec("-5"), Reason: "x"}, model.ErrInvalidAmount},
		{"blank reason", dto.MovementRequest{SessionID: id.String(), Type: "cash_in", Amount: dec("5"), Reason: "   "}, model.ErrInvalidReason},
		{"unknown type", dto.MovementRequest{SessionID: id.String(), Type: "cash_drop", Amount: dec("5"), Reason: "x"}, model.ErrInvalidMovementType},
		{"unknown session", dto.MovementRequest{SessionID: uuid.NewString(), Type: "cash_in", Amount: dec("5"), Reason: "x"}, model.ErrSessionNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.movementSvc.RecordMovement(ctx, e.businessID, e.operatorID, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// None of the rejected calls may have left a ledger row behind.
	assert.Empty(t, e.sessions.movements)
}

func TestRecordMovement_TenantMismatch(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	id, err := e.openSession(ctx, dec("100"))
	require.NoError(t, err)

	_, err = e.movementSvc.RecordMovement(ctx, uuid.New(), e.operatorID, dto.MovementRequest{
		SessionID: id.String(), Type: "cash_in", Amount: dec("5"), Reason: "x",
	})
	assert.ErrorIs(t, err, model.ErrTenantMismatch)
}

func TestRecordMovement_ConcurrentSumsCommute(t *testing.T) {
	// Interleaved movement writers must serialize; the final bucket is the
	// plain sum no matter the order.
	e := newEnv()
	ctx := context.Background()
	id, err := e.openSession(ctx, dec("0"))
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.movementSvc.RecordMovement(ctx, e.businessID, e.operatorID, dto.MovementRequest{
				SessionID: id.String(), Type: "cash_in", Amount: dec("10"), Reason: fmt.Sprintf("drop %d", i),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	sess, err := e.sessions.FindByID(ctx, e.businessID, id)
	require.NoError(t, err)
	assert.Equal(t, "100", sess.TotalCashIn.String())
	assert.Len(t, sess.Movements, n)
}

// ── Sales ────────────────────────────────────────────────────────────────────

func TestRecordSale_MethodBuckets(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	id, err := e.openSession(ctx, dec("100"))
	require.NoError(t, err)

	_, err = e.movementSvc.RecordSale(ctx, e.businessID, e.operatorID, dto.SaleRequest{
		SessionID: id.String(), Amount: dec("40"), PaymentMethod: "cash",
	})
	require.NoError(t, err)
	// Method strings normalize before bucketing.
	_, err = e.movementSvc.RecordSale(ctx, e.businessID, e.operatorID, dto.SaleRequest{
		SessionID: id.String(), Amount: dec("60"), PaymentMethod: "  Card ",
	})
	require.NoError(t, err)
	// Open method: counts toward sales, no bucket.
	resp, err := e.movementSvc.RecordSale(ctx, e.businessID, e.operatorID, dto.SaleRequest{
		SessionID: id.String(), Amount: dec("15"), PaymentMethod: "voucher",
	})
	require.NoError(t, err)

	assert.Equal(t, "115", resp.Totals.TotalSales.String())
	assert.Equal(t, "40", resp.Totals.TotalCashPayments.String())
	assert.Equal(t, "60", resp.Totals.TotalCardPayments.String())
	assert.Equal(t, 3, resp.Totals.TransactionCount)
}

func TestRecordSale_Rejections(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	id, err := e.openSession(ctx, dec("100"))
	require.NoError(t, err)

	_, err = e.movementSvc.RecordSale(ctx, e.businessID, e.operatorID, dto.SaleRequest{
		SessionID: id.String(), Amount: dec("0"), PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, model.ErrInvalidAmount)

	_, err = e.movementSvc.RecordSale(ctx, e.businessID, e.operatorID, dto.SaleRequest{
		SessionID: id.String(), Amount: dec("10"), PaymentMethod: "   ",
	})
	assert.ErrorIs(t, err, model.ErrInvalidPaymentMethod)
}

// ── Refunds ──────────────────────────────────────────────────────────────────

func TestRecordRefund_NetsAgainstSales(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	id, err := e.openSession(ctx, dec("100"))
	require.NoError(t, err)

	_, err = e.movementSvc.RecordSale(ctx, e.businessID, e.operatorID, dto.SaleRequest{
		SessionID: id.String(), Amount: dec("80"), PaymentMethod: "cash",
	})
	require.NoError(t, err)

	resp, err := e.movementSvc.RecordRefund(ctx, e.businessID, e.operatorID, dto.RefundRequest{
		SessionID: id.String(), Amount: dec("30"), PaymentMethod: "cash",
	})
	require.NoError(t, err)

	assert.Equal(t, "50", resp.Totals.TotalSales.String())
	assert.Equal(t, "50", resp.Totals.TotalCashPayments.String())
	assert.Equal(t, "30", resp.Totals.TotalRefunds.String())
	assert.Equal(t, 2, resp.Totals.TransactionCount)
}

func TestRecordRefund_ExceedsSales(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	id, err := e.openSession(ctx, dec("100"))
	require.NoError(t, err)

	_, err = e.movementSvc.RecordSale(ctx, e.businessID, e.operatorID, dto.SaleRequest{
		SessionID: id.String(), Amount: dec("20"), PaymentMethod: "cash",
	})
	require.NoError(t, err)

	_, err = e.movementSvc.RecordRefund(ctx, e.businessID, e.operatorID, dto.RefundRequest{
		SessionID: id.String(), Amount: dec("20.01"), PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, model.ErrRefundExceedsSales)

	// Nothing written: totals still reflect only the sale.
	sess, err := e.sessions.FindByID(ctx, e.businessID, id)
	require.NoError(t, err)
	assert.Equal(t, "20", sess.TotalSales.String())
	assert.True(t, sess.TotalRefunds.IsZero())
	assert.Equal(t, 1, sess.TransactionCount)
}

func TestRecordRefund_ExceedsMethodBucket(t *testing.T) {
	// Total sales could absorb the refund but the cash bucket cannot; the
	// refund must be rejected, not partially applied.
	e := newEnv()
	ctx := context.Background()
	id, err := e.openSession(ctx, dec("100"))
	require.NoError(t, err)

	_, err = e.movementSvc.RecordSale(ctx, e.businessID, e.operatorID, dto.SaleRequest{
		SessionID: id.String(), Amount: dec("50"), PaymentMethod: "cash",
	})
	require.NoError(t, err)
	_, err = e.movementSvc.RecordSale(ctx, e.businessID, e.operatorID, dto.SaleRequest{
		SessionID: id.String(), Amount: dec("50"), PaymentMethod: "card",
	})
	require.NoError(t, err)

	_, err = e.movementSvc.RecordRefund(ctx, e.businessID, e.operatorID, dto.RefundRequest{
		SessionID: id.String(), Amount: dec("60"), PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, model.ErrRefundExceedsSales)
}

func TestRecordRefund_OpenMethod(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	id, err := e.openSession(ctx, dec("100"))
	require.NoError(t, err)

	_, err = e.movementSvc.RecordSale(ctx, e.businessID, e.operatorID, dto.SaleRequest{
		SessionID: id.String(), Amount: dec("40"), PaymentMethod: "voucher",
	})
	require.NoError(t, err)

	resp, err := e.movementSvc.RecordRefund(ctx, e.businessID, e.operatorID, dto.RefundRequest{
		SessionID: id.String(), Amount: dec("10"), PaymentMethod: "voucher",
	})
	require.NoError(t, err)
	assert.Equal(t, "30", resp.Totals.TotalSales.String())
	assert.Equal(t, "10", resp.Totals.TotalRefunds.String())
	assert.True(t, resp.Totals.TotalCashPayments.IsZero())
	assert.True(t, resp.Totals.TotalCardPayments.IsZero())
}

func TestRefundAffectsExpectedCash(t *testing.T) {
	// A cash refund hands money back out of the drawer, so expected cash at
	// close drops with it: 100 float + (100 − 30) net cash = 170.
	e := newEnv()
	ctx := context.Background()
	id, err := e.openSession(ctx, dec("100"))
	require.NoError(t, err)

	_, err = e.movementSvc.RecordSale(ctx, e.businessID, e.operatorID, dto.SaleRequest{
		SessionID: id.String(), Amount: dec("100"), PaymentMethod: "cash",
	})
	require.NoError(t, err)
	_, err = e.movementSvc.RecordRefund(ctx, e.businessID, e.operatorID, dto.RefundRequest{
		SessionID: id.String(), Amount: dec("30"), PaymentMethod: "cash",
	})
	require.NoError(t, err)

	resp, err := e.sessionSvc.Close(ctx, e.businessID, e.operatorID, dto.CloseSessionRequest{
		SessionID: id.String(), ActualCash: dec("170"),
	})
	require.NoError(t, err)
	assert.Equal(t, "170", resp.Reconciliation.ExpectedCash.String())
	assert.True(t, resp.Reconciliation.CashDifference.IsZero())
}

// ── Closed sessions are frozen ───────────────────────────────────────────────

func TestClosedSessionRejectsAllWrites(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	id, err := e.openSession(ctx, dec("100"))
	require.NoError(t, err)

	_, err = e.sessionSvc.Close(ctx, e.businessID, e.operatorID, dto.CloseSessionRequest{
		SessionID: id.String(), ActualCash: dec("100"),
	})
	require.NoError(t, err)

	_, err = e.movementSvc.RecordMovement(ctx, e.businessID, e.operatorID, dto.MovementRequest{
		SessionID: id.String(), Type: "cash_in", Amount: dec("5"), Reason: "late drop",
	})
	assert.ErrorIs(t, err, model.ErrSessionNotOpen)

	_, err = e.movementSvc.RecordSale(ctx, e.businessID, e.operatorID, dto.SaleRequest{
		SessionID: id.String(), Amount: dec("5"), PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, model.ErrSessionNotOpen)

	_, err = e.movementSvc.RecordRefund(ctx, e.businessID, e.operatorID, dto.RefundRequest{
		SessionID: id.String(), Amount: dec("5"), PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, model.ErrSessionNotOpen)
}

// ── Listing ──────────────────────────────────────────────────────────────────

func TestListMovements_EntryOrder(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	id, err := e.openSession(ctx, dec("100"))
	require.NoError(t, err)

	reasons := []string{"first", "second", "third"}
	for _, reason := range reasons {
		_, err := e.movementSvc.RecordMovement(ctx, e.businessID, e.operatorID, dto.MovementRequest{
			SessionID: id.String(), Type: "cash_in", Amount: dec("1"), Reason: reason,
		})
		require.NoError(t, err)
	}

	resp, err := e.movementSvc.ListMovements(ctx, e.businessID, id)
	require.NoError(t, err)
	require.Equal(t, 3, resp.Total)
	for i, reason := range reasons {
		assert.Equal(t, reason, resp.Data[i].Reason)
	}
}

func TestListMovements_CrossTenantHidden(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	id, err := e.openSession(ctx, dec("100"))
	require.NoError(t, err)

	_, err = e.movementSvc.ListMovements(ctx, uuid.New(), id)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}
