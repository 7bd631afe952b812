package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Startup probe only; queue operations carry their own contexts.
const redisPingTimeout = 5 * time.Second

// NewRedis builds the client backing the job queues and the DLQ. Workers hold
// blocking BRPOP connections on it, so the pool must outnumber the worker
// count; go-redis's default (10 per CPU) covers any sane WORKER_POOL_SIZE.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
