package redis

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/robertarktes/batch-seat-reservations/internal/seatstore"
)

type Slot struct {
	client *redis.Client
	key    string
}

var _ seatstore.Slot = &Slot{}

func NewSlot(client *redis.Client, key string) *Slot {
	return &Slot{client: client, key: key}
}

func (s *Slot) Get(ctx context.Context) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "redis get %s", s.key)
	}
	return val, true, nil
}

func (s *Slot) Set(ctx context.Context, value string) error {
	return errors.Wrapf(s.client.Set(ctx, s.key, value, 0).Err(), "redis set %s", s.key)
}
