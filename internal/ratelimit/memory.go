package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long an untouched bucket is kept. A bucket idle this long
// has refilled completely, so dropping it changes nothing.
const idleTTL = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps one golang.org/x/time/rate limiter per key.
type MemoryLimiter struct {
	policy Policy
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

func NewMemoryLimiter(policy Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:  policy,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	if m.policy.Unlimited() {
		return Result{Allowed: true, Remaining: int64(m.policy.burst())}, nil
	}

	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)

	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(m.policy.perSecond()), m.policy.burst())}
		m.buckets[key] = b
	}
	b.lastSeen = now

	if b.limiter.AllowN(now, 1) {
		return Result{
			Allowed:   true,
			Remaining: int64(b.limiter.TokensAt(now)),
		}, nil
	}

	tokens := b.limiter.TokensAt(now)
	return Result{
		Allowed:    false,
		Remaining:  0,
		RetryAfter: retryAfter(tokens, m.policy.perSecond()),
	}, nil
}

// sweep drops idle buckets at most once per idleTTL. Caller holds mu.
func (m *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < idleTTL {
		return
	}
	m.lastSweep = now
	for key, b := range m.buckets {
		if now.Sub(b.lastSeen) >= idleTTL {
			delete(m.buckets, key)
		}
	}
}

// Len returns the number of live buckets.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}
