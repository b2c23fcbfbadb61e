package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"event_management/pkg/logger"
)

type RateLimitRepository interface {
	// Increment bumps the fixed-window counter for key and returns the new
	// value; the window starts with the first hit.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

func (r *rateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		r.log.Error("Failed to increment rate limit", "error", err, "key", key)
		return 0, err
	}

	if count == 1 {
		if err := r.redis.Expire(ctx, key, window).Err(); err != nil {
			r.log.Error("Failed to set rate limit window", "error", err, "key", key)
			return count, err
		}
	}

	return count, nil
}

func (r *rateLimitRepository) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := r.redis.TTL(ctx, key).Result()
	if err != nil {
		r.log.Error("Failed to read rate limit ttl", "error", err, "key", key)
		return 0, err
	}
	return ttl, nil
}
