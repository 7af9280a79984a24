package rateLimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (m *memCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[key]++
	return m.counts[key], nil
}

func TestAllow(t *testing.T) {
	ctx := context.Background()
	counter := &memCounter{}
	rl := NewRateLimiter(counter, 2, time.Minute, nil)

	require.True(t, rl.Allow(ctx, "ip:1"))
	require.True(t, rl.Allow(ctx, "ip:1"))
	require.False(t, rl.Allow(ctx, "ip:1"))
	require.True(t, rl.Allow(ctx, "ip:2"))
	require.EqualValues(t, 3, counter.counts["rl:ip:1"])
}

func TestAllowDisabled(t *testing.T) {
	ctx := context.Background()
	var nilLimiter *RateLimiter
	require.True(t, nilLimiter.Allow(ctx, "k"))
	require.True(t, NewRateLimiter(nil, 1, time.Minute, nil).Allow(ctx, "k"))

	rl := NewRateLimiter(&memCounter{}, 0, time.Minute, nil)
	for i := 0; i < 5; i++ {
		require.True(t, rl.Allow(ctx, "k"))
	}
}

func TestAllowFailsOpen(t *testing.T) {
	rl := NewRateLimiter(&memCounter{err: errors.New("connection refused")}, 1, time.Minute, nil)
	require.True(t, rl.Allow(context.Background(), "k"))
	require.True(t, rl.Allow(context.Background(), "k"))
}
