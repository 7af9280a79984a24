package idempotency

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	redisadapter "github.com/robertarktes/batch-seat-reservations/internal/adapters/redis"
)

const (
	MinKeyLength = 16
	MaxKeyLength = 255
)

var ErrInvalidKey = errors.New("invalid Idempotency-Key")

// Store persists responses; the Redis replay store is the production one.
type Store interface {
	Load(ctx context.Context, key string) (*redisadapter.StoredResponse, error)
	Save(ctx context.Context, key string, resp redisadapter.StoredResponse, ttl time.Duration) error
}

type Response = redisadapter.StoredResponse

type Idempotency struct {
	store Store
	ttl   time.Duration
}

// NewIdempotency returns a replayer; a nil store turns it into a no-op.
func NewIdempotency(store Store, ttl time.Duration) *Idempotency {
	return &Idempotency{store: store, ttl: ttl}
}

func (i *Idempotency) Enabled() bool {
	return i != nil && i.store != nil
}

func ValidateKey(key string) error {
	if len(key) < MinKeyLength || len(key) > MaxKeyLength {
		return errors.WithDetailf(ErrInvalidKey, "length %d", len(key))
	}
	return nil
}

// Get returns the stored response for key, or nil if none was recorded.
func (i *Idempotency) Get(ctx context.Context, scope, key string) (*Response, error) {
	if !i.Enabled() || key == "" {
		return nil, nil
	}
	return i.store.Load(ctx, scope+":"+key)
}

func (i *Idempotency) Set(ctx context.Context, scope, key string, resp Response) error {
	if !i.Enabled() || key == "" {
		return nil
	}
	return i.store.Save(ctx, scope+":"+key, resp, i.ttl)
}
