package worker

// audit_worker.go
// Delivers audit events from QueueAudit to the external audit sink.
// Delivery is at-least-once: exponential backoff inside the process, then the
// DLQ plus an ops alert when the sink stays down. The ledger itself is never
// blocked on audit delivery.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/infra"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Audit actions emitted by the session and movement services.
const (
	ActionSessionOpened    = "session_opened"
	ActionSessionClosed    = "session_closed"
	ActionMovementRecorded = "movement_recorded"
	ActionSaleRecorded     = "sale_recorded"
	ActionRefundRecorded   = "refund_recorded"
)

// AuditEvent is the queue payload describing one ledger mutation. Before and
// After carry the running-aggregate snapshots around the write.
type AuditEvent struct {
	Action     string             `json:"action"`
	BusinessID string             `json:"business_id"`
	RegisterID string             `json:"register_id,omitempty"`
	SessionID  string             `json:"session_id"`
	MovementID string             `json:"movement_id,omitempty"`
	ActorID    string             `json:"actor_id"`
	Before     *dto.SessionTotals `json:"before,omitempty"`
	After      *dto.SessionTotals `json:"after,omitempty"`
	At         time.Time          `json:"at"`
}

const maxAuditAttempts = 3

// AuditSink delivers one serialized audit event. infra.AuditSinkClient is the
// production implementation.
type AuditSink interface {
	Deliver(ctx context.Context, event json.RawMessage) error
}

// AuditWorker ships audit events to the external sink through the circuit
// breaker so a downed sink fast-fails instead of tying up the pool.
type AuditWorker struct {
	sink       AuditSink
	cb         *infra.CircuitBreaker
	rdb        *redis.Client
	dispatcher *Dispatcher
	clock      clockwork.Clock
}

func NewAuditWorker(sink AuditSink, cb *infra.CircuitBreaker, rdb *redis.Client, dispatcher *Dispatcher, clock clockwork.Clock) *AuditWorker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AuditWorker{sink: sink, cb: cb, rdb: rdb, dispatcher: dispatcher, clock: clock}
}

// Process delivers a single audit event:
//  1. Parse the AuditEvent payload
//  2. POST to the audit sink through the circuit breaker, with backoff
//  3. On exhausted retries: DLQ the raw payload and enqueue an ops alert
func (w *AuditWorker) Process(ctx context.Context, raw json.RawMessage) {
	var ev AuditEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Error().Err(err).Msg("audit_worker: invalid payload")
		return
	}

	deliverErr := withRetry(ctx, w.clock, maxAuditAttempts, func(attempt int) error {
		err := w.cb.Execute(func() error {
			return w.sink.Deliver(ctx, raw)
		})
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("action", ev.Action).
				Str("session_id", ev.SessionID).
				Msg("audit_worker: delivery attempt failed, retrying")
		}
		return err
	})
	if deliverErr == nil {
		log.Info().Str("action", ev.Action).Str("session_id", ev.SessionID).Msg("audit_worker: event delivered")
		return
	}

	log.Error().
		Err(deliverErr).
		Str("action", ev.Action).
		Str("session_id", ev.SessionID).
		Msg("audit_worker: delivery failed after all retries")

	SendToDLQ(ctx, w.rdb, QueueAudit, "audit", raw,
		fmt.Sprintf("delivery failed after %d attempts: %v", maxAuditAttempts, deliverErr),
		maxAuditAttempts)

	if w.dispatcher != nil {
		_ = w.dispatcher.EnqueueAlert(ctx, AlertJobPayload{
			Subject: fmt.Sprintf("audit delivery failing: %s", ev.Action),
			Body: fmt.Sprintf(
				"Audit event for session %s (action %s) could not be delivered after %d attempts.\nLast error: %v\nThe event is parked in %s.",
				ev.SessionID, ev.Action, maxAuditAttempts, deliverErr, DLQKey(QueueAudit)),
		})
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, clock clockwork.Clock, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-clock.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
