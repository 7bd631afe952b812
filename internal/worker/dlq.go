package worker

// dlq.go — Dead Letter Queue
// Jobs that exhaust their retries are parked here, one Redis list per source
// queue, until the replay loop or an operator drains them. Audit events must
// never be silently dropped, so the DLQ is the floor under at-least-once
// delivery.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQKey returns the Redis list holding a queue's parked jobs.
func DLQKey(queue string) string { return DLQPrefix + queue }

// DLQEntry wraps a failed job with enough metadata to replay or triage it.
type DLQEntry struct {
	SourceQueue string          `json:"source_queue"`
	JobType     string          `json:"job_type"`
	Payload     json.RawMessage `json:"payload"`
	Reason      string          `json:"reason"`
	ParkedAt    time.Time       `json:"parked_at"`
	Attempts    int             `json:"attempts"`
}

// SendToDLQ parks a failed job. A push failure is logged and swallowed: the
// caller already exhausted its retries and has nowhere else to put the job.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		SourceQueue: queue,
		JobType:     jobType,
		Payload:     payload,
		Reason:      reason,
		ParkedAt:    time.Now().UTC(),
		Attempts:    attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	if err := rdb.LPush(ctx, DLQKey(queue), data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", DLQKey(queue)).Msg("dlq: failed to push to DLQ")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of parked entries for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQKey(queue)).Result()
}
