package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(p Policy) (*MemoryLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(p)
	l.now = clock.now
	return l, clock
}

func TestMemoryLimiter_BurstThenReject(t *testing.T) {
	l, _ := newTestLimiter(Policy{PerMinute: 60, Burst: 3})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, int64(2-i), res.Remaining)
	}

	res, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Second, res.RetryAfter)
}

func TestMemoryLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(Policy{PerMinute: 6, Burst: 1})
	ctx := context.Background()

	res, _ := l.Allow(ctx, "k")
	require.True(t, res.Allowed)

	res, _ = l.Allow(ctx, "k")
	require.False(t, res.Allowed)
	assert.Equal(t, 10*time.Second, res.RetryAfter)

	clock.advance(11 * time.Second)
	res, _ = l.Allow(ctx, "k")
	assert.True(t, res.Allowed)
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(Policy{PerMinute: 60, Burst: 1})
	ctx := context.Background()

	res, _ := l.Allow(ctx, "a")
	assert.True(t, res.Allowed)
	res, _ = l.Allow(ctx, "a")
	assert.False(t, res.Allowed)

	res, _ = l.Allow(ctx, "b")
	assert.True(t, res.Allowed)
}

func TestMemoryLimiter_Unlimited(t *testing.T) {
	l, _ := newTestLimiter(Policy{PerMinute: 0, Burst: 5})

	for i := 0; i < 100; i++ {
		res, err := l.Allow(context.Background(), "k")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}
	assert.Zero(t, l.Len(), "unlimited policy keeps no buckets")
}

func TestMemoryLimiter_SweepsIdleBuckets(t *testing.T) {
	l, clock := newTestLimiter(Policy{PerMinute: 60, Burst: 1})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = l.Allow(ctx, fmt.Sprintf("client-%d", i))
	}
	assert.Equal(t, 5, l.Len())

	clock.advance(idleTTL + time.Second)
	_, _ = l.Allow(ctx, "fresh")
	assert.Equal(t, 1, l.Len())
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), retryAfter(1.5, 1))
	assert.Equal(t, time.Second, retryAfter(0.5, 1))
	assert.Equal(t, 2*time.Second, retryAfter(0, 0.5))
}

func TestHashKey(t *testing.T) {
	a := hashKey("10.0.0.1")
	assert.Len(t, a, 16)
	assert.Equal(t, a, hashKey("10.0.0.1"))
	assert.NotEqual(t, a, hashKey("10.0.0.2"))
}
