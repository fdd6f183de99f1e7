package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCounter struct {
	counts   map[string]int64
	ttls     map[string]time.Duration
	incrErr  error
	expireOK bool
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, ttls: map[string]time.Duration{}, expireOK: true}
}

func (f *fakeCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.incrErr != nil {
		return redis.NewIntResult(0, f.incrErr)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.ttls[key] = expiration
	return redis.NewBoolResult(f.expireOK, nil)
}

func TestRedisJoinLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	counter := newFakeCounter()
	limiter := NewRedisJoinLimiter(counter, 3, time.Minute, zap.NewNop())

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "join:B1:u1")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i+1)
	}

	allowed, err := limiter.Allow(ctx, "join:B1:u1")
	require.NoError(t, err)
	assert.False(t, allowed)

	// windows are per key
	allowed, err = limiter.Allow(ctx, "join:B1:u2")
	require.NoError(t, err)
	assert.True(t, allowed)

	assert.Equal(t, time.Minute, counter.ttls[keyPrefix+"join:B1:u1"])
	assert.Len(t, counter.ttls, 2)
}

func TestRedisJoinLimiter_Error(t *testing.T) {
	counter := newFakeCounter()
	counter.incrErr = errors.New("redis down")
	limiter := NewRedisJoinLimiter(counter, 3, time.Minute, zap.NewNop())

	_, err := limiter.Allow(context.Background(), "join:B1:u1")
	assert.Error(t, err)
}

func TestNopJoinLimiter(t *testing.T) {
	allowed, err := NopJoinLimiter{}.Allow(context.Background(), "any")
	assert.NoError(t, err)
	assert.True(t, allowed)
}
