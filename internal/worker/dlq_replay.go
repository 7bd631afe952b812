package worker

// dlq_replay.go
// Background goroutine that drains parked audit events back onto their work
// queue once the sink's circuit breaker has closed again. Keeps at-least-once
// delivery going without an operator replaying by hand.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/BrightonDube/BizPilot2-sub004/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	replayTickInterval = 30 * time.Second
	replayBatchSize    = 10
)

// DLQReplayConfig holds all dependencies for the replay goroutine.
type DLQReplayConfig struct {
	RDB *redis.Client
	CB  *infra.CircuitBreaker
	// Queues lists the source queues whose DLQs get replayed.
	Queues []string
}

// StartDLQReplay launches a background goroutine that ticks every 30s and
// moves DLQ entries back onto their source queue, at most replayBatchSize
// per queue per tick. It respects the context for graceful shutdown.
func StartDLQReplay(ctx context.Context, cfg DLQReplayConfig) {
	go func() {
		ticker := time.NewTicker(replayTickInterval)
		defer ticker.Stop()

		log.Info().Strs("queues", cfg.Queues).Msg("dlq_replay: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("dlq_replay: shutting down")
				return
			case <-ticker.C:
				replayTick(ctx, cfg)
			}
		}
	}()
}

func replayTick(ctx context.Context, cfg DLQReplayConfig) {
	// An open breaker means the sink is still down; replaying now would just
	// cycle entries straight back into the DLQ.
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("dlq_replay: circuit breaker is open, skipping tick")
		return
	}

	for _, queue := range cfg.Queues {
		dlqKey := DLQKey(queue)
		for i := 0; i < replayBatchSize; i++ {
			// The breaker may have tripped mid-batch.
			if cfg.CB.State() == infra.CBOpen {
				log.Debug().Msg("dlq_replay: circuit breaker opened mid-batch, stopping")
				return
			}

			raw, err := cfg.RDB.RPop(ctx, dlqKey).Result()
			if errors.Is(err, redis.Nil) {
				break
			}
			if err != nil {
				log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq_replay: failed to pop entry")
				return
			}

			var entry DLQEntry
			if err := json.Unmarshal([]byte(raw), &entry); err != nil {
				// Park the unreadable entry at the back of the DLQ; it is
				// never dropped, and the log line flags it for manual repair.
				log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq_replay: unreadable entry, parked again")
				cfg.RDB.LPush(ctx, dlqKey, raw)
				break
			}

			job, err := json.Marshal(Job{Type: entry.JobType, Payload: entry.Payload})
			if err != nil {
				log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq_replay: failed to rebuild job envelope")
				cfg.RDB.LPush(ctx, dlqKey, raw)
				break
			}
			if err := cfg.RDB.LPush(ctx, queue, job).Err(); err != nil {
				log.Error().Err(err).Str("queue", queue).Msg("dlq_replay: failed to requeue entry")
				cfg.RDB.LPush(ctx, dlqKey, raw)
				return
			}

			log.Info().
				Str("queue", queue).
				Str("job_type", entry.JobType).
				Time("parked_at", entry.ParkedAt).
				Msg("dlq_replay: entry requeued")
		}
	}
}
