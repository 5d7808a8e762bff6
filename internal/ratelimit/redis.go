package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "prompt2json:ratelimit:"

// tokenBucketScript refills and consumes in one atomic step.
// Returns {allowed, retry_after_seconds, remaining_tokens}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local burst = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = math.max(0, now - last_update)
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// RedisLimiter stores buckets in Redis. Redis errors are logged and the
// request is allowed: an outage of the limiter must not take conversions
// down with it.
type RedisLimiter struct {
	client *redis.Client
	scope  string
	policy Policy
	logger *slog.Logger
	now    func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

// Connect opens a pooled client and verifies it with PING.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

// NewRedisLimiter limits keys under scope, so several limiters can share
// one Redis database.
func NewRedisLimiter(client *redis.Client, scope string, policy Policy, logger *slog.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		scope:  scope,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if l.policy.Unlimited() {
		return Result{Allowed: true, Remaining: int64(l.policy.burst())}, nil
	}

	perSecond := l.policy.perSecond()
	// A full refill plus a minute of slack.
	ttl := int(float64(l.policy.burst())/perSecond) + 60

	out, err := tokenBucketScript.Run(ctx, l.client,
		[]string{keyPrefix + l.scope + ":" + hashKey(key)},
		perSecond, l.policy.burst(), l.now().Unix(), ttl,
	).Int64Slice()
	if err != nil {
		l.logger.Warn("rate limit check failed, allowing request",
			slog.String("scope", l.scope),
			slog.String("error", err.Error()),
		)
		return Result{Allowed: true, Remaining: int64(l.policy.burst())}, nil
	}
	if len(out) != 3 {
		return Result{Allowed: true, Remaining: int64(l.policy.burst())}, nil
	}

	return Result{
		Allowed:    out[0] == 1,
		Remaining:  out[2],
		RetryAfter: time.Duration(out[1]) * time.Second,
	}, nil
}

// Ping reports Redis reachability for readiness checks.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
