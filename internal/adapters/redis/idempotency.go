package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "idemp:"

// ReplayStore keeps finished responses keyed by the client's Idempotency-Key.
type ReplayStore struct {
	client *redis.Client
}

func NewReplayStore(client *redis.Client) *ReplayStore {
	return &ReplayStore{client: client}
}

type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

func (s *ReplayStore) Load(ctx context.Context, key string) (*StoredResponse, error) {
	val, err := s.client.Get(ctx, idempotencyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load replay")
	}
	var resp StoredResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, errors.Wrap(err, "decode replay")
	}
	return &resp, nil
}

// Save keeps the first response stored under key; later saves are ignored.
func (s *ReplayStore) Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return errors.Wrap(s.client.SetNX(ctx, idempotencyPrefix+key, data, ttl).Err(), "save replay")
}
