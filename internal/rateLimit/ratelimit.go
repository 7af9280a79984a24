package rateLimit

import (
	"context"
	"time"

	"github.com/robertarktes/batch-seat-reservations/internal/observability"
)

// Counter is a fixed-window counter, satisfied by the Redis cache.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RateLimiter struct {
	counter Counter
	rate    int
	period  time.Duration
	logger  observability.Logger
}

// NewRateLimiter allows rate hits per period for each key. A nil counter or a
// non-positive rate disables limiting.
func NewRateLimiter(counter Counter, rate int, period time.Duration, logger observability.Logger) *RateLimiter {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &RateLimiter{counter: counter, rate: rate, period: period, logger: logger}
}

// Allow fails open when the counter is unreachable.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl == nil || rl.counter == nil || rl.rate <= 0 {
		return true
	}
	n, err := rl.counter.Incr(ctx, "rl:"+key, rl.period)
	if err != nil {
		rl.logger.WithField("key", key).Warn("rate limit counter unavailable: ", err)
		return true
	}
	if n > int64(rl.rate) {
		observability.RateLimitExceeded.Inc()
		return false
	}
	return true
}
