package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "gm:ratelimit:"

// RedisLimiter is a sorted-set sliding window shared across instances.
// Scores are event times in microseconds.
type RedisLimiter struct {
	rdb   redis.UniversalClient
	clock clockwork.Clock
}

func NewRedisLimiter(rdb redis.UniversalClient, clock clockwork.Clock) *RedisLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RedisLimiter{rdb: rdb, clock: clock}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string, window time.Duration, limit int) (bool, error) {
	now := r.clock.Now()
	redisKey := redisKeyPrefix + key
	member := uuid.NewString()
	minScore := now.Add(-window).UnixMicro()

	pipe := r.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+strconv.FormatInt(minScore, 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMicro()), Member: member})
	pipe.Expire(ctx, redisKey, window+time.Minute)
	countCmd := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}

	count, err := countCmd.Result()
	if err != nil {
		r.rdb.ZRem(ctx, redisKey, member)
		return false, fmt.Errorf("failed to read rate limit count: %w", err)
	}
	if count > int64(limit) {
		// Denied events do not consume budget.
		if err := r.rdb.ZRem(ctx, redisKey, member).Err(); err != nil {
			return false, fmt.Errorf("failed to roll back rate limit entry: %w", err)
		}
		return false, nil
	}
	return true, nil
}
