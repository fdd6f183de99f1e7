package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "board:ratelimit:"

// windowCounter is the part of redis.Cmdable the limiter needs.
type windowCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisJoinLimiter allows at most limit attempts per key within a fixed window.
type RedisJoinLimiter struct {
	client windowCounter
	limit  int64
	window time.Duration
	logger *zap.Logger
}

func NewRedisJoinLimiter(client windowCounter, limit int, window time.Duration, logger *zap.Logger) *RedisJoinLimiter {
	return &RedisJoinLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		logger: logger,
	}
}

// Allow counts one attempt for key and reports whether it is within the limit.
func (l *RedisJoinLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = keyPrefix + key

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}

	// the first hit opens the window
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("Failed to set rate limit window",
				zap.String("key", key),
				zap.Error(err))
		}
	}

	return count <= l.limit, nil
}

// NopJoinLimiter allows everything. Used when Redis is not configured.
type NopJoinLimiter struct{}

func (NopJoinLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}
