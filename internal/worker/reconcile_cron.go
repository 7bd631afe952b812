package worker

// reconcile_cron.go
// Scheduled sweep that re-derives session aggregates from the movement ledger
// and watches the one-open-session-per-register guarantee. Mismatches are
// invariant violations: they are logged and alerted, NEVER repaired in place —
// a frozen closed session stays exactly as the close wrote it.

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/BrightonDube/BizPilot2-sub004/internal/model"
	"github.com/BrightonDube/BizPilot2-sub004/internal/repository"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// initialLookback bounds the first sweep after a restart.
const initialLookback = 24 * time.Hour

// ReconcileCronConfig holds all dependencies for the reconciliation sweep.
type ReconcileCronConfig struct {
	Sessions   repository.SessionRepository
	Dispatcher *Dispatcher
	Schedule   string
	Clock      clockwork.Clock
}

type reconciler struct {
	cfg ReconcileCronConfig

	mu        sync.Mutex
	lastSweep time.Time
}

// StartReconcileCron registers the sweep on the given cron schedule and
// starts it. The cron is stopped when ctx is cancelled.
func StartReconcileCron(ctx context.Context, cfg ReconcileCronConfig) (*cron.Cron, error) {
	r := &reconciler{cfg: cfg, lastSweep: cfg.Clock.Now().Add(-initialLookback)}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() { r.sweep(ctx) }); err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Str("schedule", cfg.Schedule).Msg("reconcile_cron: started")

	go func() {
		<-ctx.Done()
		stopCtx := c.Stop()
		<-stopCtx.Done()
		log.Info().Msg("reconcile_cron: stopped")
	}()
	return c, nil
}

// sweep verifies sessions closed since the previous run, then scans for
// registers holding more than one open session. The mutex keeps overlapping
// ticks from double-sweeping the same window.
func (r *reconciler) sweep(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := r.cfg.Clock.Now()
	sessions, err := r.cfg.Sessions.ClosedSince(ctx, r.lastSweep)
	if err != nil {
		log.Error().Err(err).Msg("reconcile_cron: failed to load closed sessions")
		return
	}
	for i := range sessions {
		r.verify(ctx, &sessions[i])
	}
	r.checkExclusivity(ctx)
	r.lastSweep = start
}

// verify re-derives the movement sums and the close arithmetic for one
// closed session and compares them to the frozen row.
func (r *reconciler) verify(ctx context.Context, s *model.CashSession) {
	sums, err := r.cfg.Sessions.SumMovements(ctx, s.ID)
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID.String()).Msg("reconcile_cron: failed to sum movements")
		return
	}

	var mismatches []string
	check := func(name string, stored, derived decimal.Decimal) {
		if !stored.Equal(derived) {
			mismatches = append(mismatches, fmt.Sprintf("%s stored=%s derived=%s", name, stored, derived))
		}
	}
	check("total_cash_in", s.TotalCashIn, sums[model.MovementCashIn])
	check("total_cash_out", s.TotalCashOut, sums[model.MovementCashOut])
	check("total_pay_in", s.TotalPayIn, sums[model.MovementPayIn])
	check("total_pay_out", s.TotalPayOut, sums[model.MovementPayOut])

	expected := s.OpeningFloat.
		Add(s.TotalCashPayments).
		Add(s.TotalCashIn).
		Add(s.TotalPayIn).
		Sub(s.TotalCashOut).
		Sub(s.TotalPayOut)
	if s.ExpectedCash == nil {
		mismatches = append(mismatches, "expected_cash missing on closed session")
	} else {
		check("expected_cash", *s.ExpectedCash, expected)
	}
	if s.ExpectedCash != nil && s.ActualCash != nil && s.CashDifference != nil {
		check("cash_difference", *s.CashDifference, s.ActualCash.Sub(*s.ExpectedCash))
	}

	if len(mismatches) == 0 {
		return
	}

	log.Error().
		Err(model.ErrInvariantViolation).
		Str("session_id", s.ID.String()).
		Str("register_id", s.RegisterID.String()).
		Strs("mismatches", mismatches).
		Msg("reconcile_cron: closed session aggregates do not match ledger")

	if r.cfg.Dispatcher != nil {
		_ = r.cfg.Dispatcher.EnqueueAlert(ctx, AlertJobPayload{
			Subject: fmt.Sprintf("ledger mismatch on session %s", s.ID),
			Body: fmt.Sprintf(
				"Session %s (register %s) failed reconciliation:\n%s\n\nThe row was left untouched for manual review.",
				s.ID, s.RegisterID, strings.Join(mismatches, "\n")),
		})
	}
}

// checkExclusivity scans for registers with more than one open session. This
// should be structurally impossible; seeing one means the exclusivity
// guarantee is broken and an operator has to intervene.
func (r *reconciler) checkExclusivity(ctx context.Context) {
	ids, err := r.cfg.Sessions.RegistersWithMultipleOpen(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reconcile_cron: failed to scan open sessions")
		return
	}
	if len(ids) == 0 {
		return
	}

	str := make([]string, len(ids))
	for i, id := range ids {
		str[i] = id.String()
	}
	log.Error().
		Err(model.ErrInvariantViolation).
		Strs("register_ids", str).
		Msg("reconcile_cron: register has more than one open session")

	if r.cfg.Dispatcher != nil {
		_ = r.cfg.Dispatcher.EnqueueAlert(ctx, AlertJobPayload{
			Subject: "register exclusivity violated",
			Body: fmt.Sprintf(
				"Registers with more than one OPEN session: %s\nSessions were not auto-closed; operator action required.",
				strings.Join(str, ", ")),
		})
	}
}
