package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local counter_key = KEYS[2]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local count = redis.call('ZCARD', key)

	if count < limit then
		local counter = redis.call('INCR', counter_key)
		redis.call('ZADD', key, now, now .. ':' .. counter)
		redis.call('PEXPIRE', key, window_ms)
		redis.call('PEXPIRE', counter_key, window_ms)
		return {1, limit - count - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry_after = 0
	if #oldest >= 2 then
		retry_after = oldest[2] + window_ms - now
	end
	return {0, 0, retry_after}
`)

// RedisLimiter is a sliding-window limiter shared by every replica that
// talks to the same Redis.
type RedisLimiter struct {
	client redis.Scripter
	rpm    int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client redis.Scripter, rpm int, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		rpm:    rpm,
		window: Window,
		prefix: prefix,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()
	redisKey := l.prefix + key

	raw, err := slidingWindow.Run(ctx, l.client, []string{redisKey, redisKey + ":counter"},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.rpm,
		l.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("скрипт ограничения запросов: %w", err)
	}
	if len(raw) < 3 {
		return Result{}, fmt.Errorf("скрипт ограничения запросов: неожиданный ответ длины %d", len(raw))
	}

	res := Result{
		Allowed:   raw[0] == 1,
		Limit:     l.rpm,
		Remaining: int(raw[1]),
		ResetAt:   now.Add(l.window),
	}
	if !res.Allowed && raw[2] > 0 {
		res.RetryAfter = time.Duration(raw[2]) * time.Millisecond
		res.ResetAt = now.Add(res.RetryAfter)
	}
	return res, nil
}
