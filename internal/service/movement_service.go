package service

import (
	"context"
	"errors"
	"strings"

	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/model"
	"github.com/BrightonDube/BizPilot2-sub004/internal/repository"
	"github.com/BrightonDube/BizPilot2-sub004/internal/worker"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

type MovementService interface {
	RecordMovement(ctx context.Context, businessID, performerID uuid.UUID, req dto.MovementRequest) (*dto.MovementResponse, error)
	RecordSale(ctx context.Context, businessID, performerID uuid.UUID, req dto.SaleRequest) (*dto.TotalsResponse, error)
	RecordRefund(ctx context.Context, businessID, performerID uuid.UUID, req dto.RefundRequest) (*dto.TotalsResponse, error)
	ListMovements(ctx context.Context, businessID, sessionID uuid.UUID) (*dto.MovementListResponse, error)
}

type movementService struct {
	repo       repository.SessionRepository
	dispatcher *worker.Dispatcher
	clock      clockwork.Clock
}

func NewMovementService(repo repository.SessionRepository, dispatcher *worker.Dispatcher, clock clockwork.Clock) MovementService {
	return &movementService{repo: repo, dispatcher: dispatcher, clock: clock}
}

// ── RecordMovement ────────────────────────────────────────────────────────────
// Manual adjustment: append the ledger row and bump the matching running sum
// in one transaction. Amounts are strictly positive, direction lives in the
// movement type.

func (s *movementService) RecordMovement(ctx context.Context, businessID, performerID uuid.UUID, req dto.MovementRequest) (*dto.MovementResponse, error) {
	movType := model.MovementType(req.Type)
	if !movType.Valid() {
		return nil, model.ErrInvalidMovementType
	}
	if !req.Amount.IsPositive() {
		return nil, model.ErrInvalidAmount
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, model.ErrInvalidReason
	}
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, model.ErrSessionNotFound
	}

	var mov *model.CashMovement
	var before, after dto.SessionTotals
	var registerID uuid.UUID

	txErr := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		sess, err := s.lockOpenSession(ctx, tx, businessID, sessionID)
		if err != nil {
			return err
		}
		before = sessionTotals(sess)
		registerID = sess.RegisterID

		mov = &model.CashMovement{
			SessionID:   sess.ID,
			BusinessID:  sess.BusinessID,
			Type:        movType,
			Amount:      req.Amount,
			Reason:      reason,
			PerformedBy: performerID,
			CreatedAt:   s.clock.Now().UTC(),
		}
		if err := s.repo.CreateMovement(ctx, tx, mov); err != nil {
			return err
		}

		switch movType {
		case model.MovementCashIn:
			sess.TotalCashIn = sess.TotalCashIn.Add(req.Amount)
		case model.MovementCashOut:
			sess.TotalCashOut = sess.TotalCashOut.Add(req.Amount)
		case model.MovementPayIn:
			sess.TotalPayIn = sess.TotalPayIn.Add(req.Amount)
		case model.MovementPayOut:
			sess.TotalPayOut = sess.TotalPayOut.Add(req.Amount)
		}
		after = sessionTotals(sess)
		return s.repo.Update(ctx, tx, sess)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditMovement(ctx, worker.ActionMovementRecorded, businessID, registerID, sessionID, mov.ID, performerID, &before, &after)
	return movementToResponse(mov), nil
}

// ── RecordSale ────────────────────────────────────────────────────────────────
// The payment method is an open string; only cash and card feed their running
// buckets, everything else counts toward total_sales alone.

func (s *movementService) RecordSale(ctx context.Context, businessID, performerID uuid.UUID, req dto.SaleRequest) (*dto.TotalsResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, model.ErrInvalidAmount
	}
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if method == "" {
		return nil, model.ErrInvalidPaymentMethod
	}
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, model.ErrSessionNotFound
	}

	var before, after dto.SessionTotals
	var registerID uuid.UUID

	txErr := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		sess, err := s.lockOpenSession(ctx, tx, businessID, sessionID)
		if err != nil {
			return err
		}
		before = sessionTotals(sess)
		registerID = sess.RegisterID

		sess.TotalSales = sess.TotalSales.Add(req.Amount)
		switch method {
		case model.PaymentCash:
			sess.TotalCashPayments = sess.TotalCashPayments.Add(req.Amount)
		case model.PaymentCard:
			sess.TotalCardPayments = sess.TotalCardPayments.Add(req.Amount)
		}
		sess.TransactionCount++

		after = sessionTotals(sess)
		return s.repo.Update(ctx, tx, sess)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditMovement(ctx, worker.ActionSaleRecorded, businessID, registerID, sessionID, uuid.Nil, performerID, &before, &after)
	return &dto.TotalsResponse{SessionID: sessionID.String(), Totals: after}, nil
}

// ── RecordRefund ──────────────────────────────────────────────────────────────
// Refunds are net against sales: total_sales and the method bucket go down,
// total_refunds goes up. A refund that would drive either negative is
// rejected with nothing written.

func (s *movementService) RecordRefund(ctx context.Context, businessID, performerID uuid.UUID, req dto.RefundRequest) (*dto.TotalsResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, model.ErrInvalidAmount
	}
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if method == "" {
		return nil, model.ErrInvalidPaymentMethod
	}
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, model.ErrSessionNotFound
	}

	var before, after dto.SessionTotals
	var registerID uuid.UUID

	txErr := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		sess, err := s.lockOpenSession(ctx, tx, businessID, sessionID)
		if err != nil {
			return err
		}
		before = sessionTotals(sess)
		registerID = sess.RegisterID

		newSales := sess.TotalSales.Sub(req.Amount)
		if newSales.IsNegative() {
			return model.ErrRefundExceedsSales
		}
		switch method {
		case model.PaymentCash:
			newBucket := sess.TotalCashPayments.Sub(req.Amount)
			if newBucket.IsNegative() {
				return model.ErrRefundExceedsSales
			}
			sess.TotalCashPayments = newBucket
		case model.PaymentCard:
			newBucket := sess.TotalCardPayments.Sub(req.Amount)
			if newBucket.IsNegative() {
				return model.ErrRefundExceedsSales
			}
			sess.TotalCardPayments = newBucket
		}
		sess.TotalSales = newSales
		sess.TotalRefunds = sess.TotalRefunds.Add(req.Amount)
		sess.TransactionCount++

		after = sessionTotals(sess)
		return s.repo.Update(ctx, tx, sess)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditMovement(ctx, worker.ActionRefundRecorded, businessID, registerID, sessionID, uuid.Nil, performerID, &before, &after)
	return &dto.TotalsResponse{SessionID: sessionID.String(), Totals: after}, nil
}

// ── ListMovements ─────────────────────────────────────────────────────────────

func (s *movementService) ListMovements(ctx context.Context, businessID, sessionID uuid.UUID) (*dto.MovementListResponse, error) {
	if _, err := s.repo.FindByID(ctx, businessID, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	movs, err := s.repo.ListMovements(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(movs))
	for i := range movs {
		items = append(items, *movementToResponse(&movs[i]))
	}
	return &dto.MovementListResponse{Data: items, Total: len(items)}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// lockOpenSession takes the row lock, then verifies tenant and status. Order
// matters: the lock is acquired before any check so racing writers serialize.
func (s *movementService) lockOpenSession(ctx context.Context, tx *gorm.DB, businessID, sessionID uuid.UUID) (*model.CashSession, error) {
	sess, err := s.repo.LockByID(ctx, tx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	if sess.BusinessID != businessID {
		return nil, model.ErrTenantMismatch
	}
	if sess.Status != model.SessionOpen {
		return nil, model.ErrSessionNotOpen
	}
	return sess, nil
}

func (s *movementService) auditMovement(ctx context.Context, action string, businessID, registerID, sessionID, movementID, actorID uuid.UUID, before, after *dto.SessionTotals) {
	if s.dispatcher == nil {
		return
	}
	ev := worker.AuditEvent{
		Action:     action,
		BusinessID: businessID.String(),
		RegisterID: registerID.String(),
		SessionID:  sessionID.String(),
		ActorID:    actorID.String(),
		Before:     before,
		After:      after,
		At:         s.clock.Now().UTC(),
	}
	if movementID != uuid.Nil {
		ev.MovementID = movementID.String()
	}
	_ = s.dispatcher.EnqueueAudit(ctx, ev)
}

func movementToResponse(m *model.CashMovement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:          m.ID.String(),
		SessionID:   m.SessionID.String(),
		Type:        string(m.Type),
		Amount:      m.Amount,
		Reason:      m.Reason,
		PerformedBy: m.PerformedBy.String(),
		CreatedAt:   m.CreatedAt.Format(timeLayout),
	}
}
