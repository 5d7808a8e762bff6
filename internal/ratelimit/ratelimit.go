// Package ratelimit implements per-client token buckets.
//
// Two backends share the Limiter interface: RedisLimiter keeps buckets in
// Redis so every instance of the server sees the same counts, and
// MemoryLimiter keeps them in-process for single-instance deployments and
// tests.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"time"
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter consumes one token from the bucket named by key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Policy sizes every bucket of a limiter.
type Policy struct {
	PerMinute int // refill rate
	Burst     int // bucket capacity
}

func (p Policy) perSecond() float64 {
	return float64(p.PerMinute) / 60.0
}

// Unlimited reports whether the policy disables limiting.
func (p Policy) Unlimited() bool {
	return p.PerMinute <= 0
}

func (p Policy) burst() int {
	if p.Burst <= 0 {
		return 1
	}
	return p.Burst
}

// retryAfter is how long until one token is available again, rounded up to
// whole seconds because Retry-After carries seconds.
func retryAfter(tokens, perSecond float64) time.Duration {
	if tokens >= 1 || perSecond <= 0 {
		return 0
	}
	secs := math.Ceil((1 - tokens) / perSecond)
	return time.Duration(secs) * time.Second
}

// hashKey keeps raw client addresses out of the store.
func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
