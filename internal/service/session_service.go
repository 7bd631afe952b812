package service

import (
	"context"
	"errors"

	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/model"
	"github.com/BrightonDube/BizPilot2-sub004/internal/repository"
	"github.com/BrightonDube/BizPilot2-sub004/internal/worker"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

type SessionService interface {
	Open(ctx context.Context, businessID, openerID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	Close(ctx context.Context, businessID, closerID uuid.UUID, req dto.CloseSessionRequest) (*dto.SessionResponse, error)
	Get(ctx context.Context, businessID, id uuid.UUID) (*dto.SessionResponse, error)
	GetActive(ctx context.Context, businessID, registerID uuid.UUID) (*dto.SessionResponse, error)
	History(ctx context.Context, businessID uuid.UUID, f dto.HistoryFilter) (*dto.SessionListResponse, error)
}

type sessionService struct {
	repo       repository.SessionRepository
	registers  repository.RegisterRepository
	dispatcher *worker.Dispatcher
	clock      clockwork.Clock
}

func NewSessionService(
	repo repository.SessionRepository,
	registers repository.RegisterRepository,
	dispatcher *worker.Dispatcher,
	clock clockwork.Clock,
) SessionService {
	return &sessionService{repo: repo, registers: registers, dispatcher: dispatcher, clock: clock}
}

// ── Open ──────────────────────────────────────────────────────────────────────
// Exactly one of N concurrent opens on the same register may win. The
// advisory lock serializes the check-then-insert; the partial unique index on
// open sessions catches anything that slips past it.

func (s *sessionService) Open(ctx context.Context, businessID, openerID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	registerID, err := uuid.Parse(req.RegisterID)
	if err != nil {
		return nil, model.ErrRegisterNotFound
	}
	if req.OpeningFloat.IsNegative() {
		return nil, model.ErrNegativeFloat
	}

	reg, err := s.registers.FindByID(ctx, businessID, registerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrRegisterNotFound
		}
		return nil, err
	}
	if !reg.Active {
		return nil, model.ErrRegisterInactive
	}

	session := &model.CashSession{
		RegisterID:   registerID,
		BusinessID:   businessID,
		OpenedByID:   openerID,
		Status:       model.SessionOpen,
		OpeningFloat: req.OpeningFloat,
		OpenedAt:     s.clock.Now().UTC(),
		Notes:        req.Notes,
	}

	txErr := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.LockRegister(ctx, tx, registerID); err != nil {
			return err
		}
		if _, err := s.repo.FindOpenByRegister(ctx, tx, registerID); err == nil {
			return model.ErrRegisterAlreadyOpen
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return s.repo.Create(ctx, tx, session)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.audit(ctx, worker.ActionSessionOpened, session, nil, openerID)
	return sessionToResponse(session), nil
}

// ── Close ─────────────────────────────────────────────────────────────────────
// Reconciliation uses only the frozen running aggregates — movement rows are
// never re-summed here. Concurrent closers serialize on the row lock; the
// loser sees CLOSED and gets a conflict.

func (s *sessionService) Close(ctx context.Context, businessID, closerID uuid.UUID, req dto.CloseSessionRequest) (*dto.SessionResponse, error) {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, model.ErrSessionNotFound
	}
	if req.ActualCash.IsNegative() {
		return nil, model.ErrNegativeActualCash
	}
	if req.ClosingFloat != nil && req.ClosingFloat.IsNegative() {
		return nil, model.ErrNegativeFloat
	}

	var session *model.CashSession
	var before dto.SessionTotals

	txErr := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		sess, err := s.repo.LockByID(ctx, tx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrSessionNotFound
			}
			return err
		}
		if sess.BusinessID != businessID {
			return model.ErrTenantMismatch
		}
		if sess.Status == model.SessionClosed {
			return model.ErrSessionAlreadyClosed
		}
		if sess.Status != model.SessionOpen {
			return model.ErrSessionNotOpen
		}

		before = sessionTotals(sess)

		expected := sess.OpeningFloat.
			Add(sess.TotalCashPayments).
			Add(sess.TotalCashIn).
			Add(sess.TotalPayIn).
			Sub(sess.TotalCashOut).
			Sub(sess.TotalPayOut)
		actual := req.ActualCash
		diff := actual.Sub(expected)

		now := s.clock.Now().UTC()
		if now.Before(sess.OpenedAt) {
			// Clock skew must not produce a close that predates the open.
			now = sess.OpenedAt
		}

		sess.Status = model.SessionClosed
		sess.ClosedByID = &closerID
		sess.ClosedAt = &now
		sess.ExpectedCash = &expected
		sess.ActualCash = &actual
		sess.CashDifference = &diff
		sess.ClosingFloat = req.ClosingFloat
		if req.Notes != nil {
			sess.Notes = req.Notes
		}

		if err := s.repo.Update(ctx, tx, sess); err != nil {
			return err
		}
		session = sess
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.audit(ctx, worker.ActionSessionClosed, session, &before, closerID)
	return sessionToResponse(session), nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *sessionService) Get(ctx context.Context, businessID, id uuid.UUID) (*dto.SessionResponse, error) {
	sess, err := s.repo.FindByID(ctx, businessID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	return sessionToResponse(sess), nil
}

func (s *sessionService) GetActive(ctx context.Context, businessID, registerID uuid.UUID) (*dto.SessionResponse, error) {
	sess, err := s.repo.FindOpenByRegister(ctx, nil, registerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	if sess.BusinessID != businessID {
		return nil, model.ErrSessionNotFound
	}
	return sessionToResponse(sess), nil
}

func (s *sessionService) History(ctx context.Context, businessID uuid.UUID, f dto.HistoryFilter) (*dto.SessionListResponse, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	sessions, total, err := s.repo.List(ctx, businessID, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		items = append(items, *sessionToResponse(&sessions[i]))
	}
	return &dto.SessionListResponse{Data: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *sessionService) audit(ctx context.Context, action string, sess *model.CashSession, before *dto.SessionTotals, actorID uuid.UUID) {
	if s.dispatcher == nil {
		return
	}
	after := sessionTotals(sess)
	_ = s.dispatcher.EnqueueAudit(ctx, worker.AuditEvent{
		Action:     action,
		BusinessID: sess.BusinessID.String(),
		RegisterID: sess.RegisterID.String(),
		SessionID:  sess.ID.String(),
		ActorID:    actorID.String(),
		Before:     before,
		After:      &after,
		At:         s.clock.Now().UTC(),
	})
}

const timeLayout = "2006-01-02T15:04:05Z"

func sessionTotals(s *model.CashSession) dto.SessionTotals {
	return dto.SessionTotals{
		TotalSales:        s.TotalSales,
		TotalRefunds:      s.TotalRefunds,
		TotalCashPayments: s.TotalCashPayments,
		TotalCardPayments: s.TotalCardPayments,
		TotalCashIn:       s.TotalCashIn,
		TotalCashOut:      s.TotalCashOut,
		TotalPayIn:        s.TotalPayIn,
		TotalPayOut:       s.TotalPayOut,
		TransactionCount:  s.TransactionCount,
	}
}

func sessionToResponse(s *model.CashSession) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:           s.ID.String(),
		RegisterID:   s.RegisterID.String(),
		Status:       string(s.Status),
		OpenedBy:     s.OpenedByID.String(),
		OpeningFloat: s.OpeningFloat,
		ClosingFloat: s.ClosingFloat,
		Totals:       sessionTotals(s),
		Notes:        s.Notes,
		OpenedAt:     s.OpenedAt.Format(timeLayout),
	}
	if s.ClosedByID != nil {
		v := s.ClosedByID.String()
		resp.ClosedBy = &v
	}
	if s.ClosedAt != nil {
		v := s.ClosedAt.Format(timeLayout)
		resp.ClosedAt = &v
	}
	if s.ExpectedCash != nil && s.ActualCash != nil && s.CashDifference != nil {
		resp.Reconciliation = &dto.ReconciliationFigures{
			ExpectedCash:   *s.ExpectedCash,
			ActualCash:     *s.ActualCash,
			CashDifference: *s.CashDifference,
		}
	}
	return resp
}
