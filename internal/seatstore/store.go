package seatstore

import (
	"context"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/batch-seat-reservations/internal/observability"
)

type Store struct {
	slot     Slot
	fallback *MemorySlot
	capacity int
	logger   observability.Logger

	// mu orders seeding against writes so a late seed never overwrites a
	// decrement that landed after the slot was seen empty.
	mu sync.Mutex
}

func New(slot Slot, capacity int, logger observability.Logger) *Store {
	return &Store{
		slot:     slot,
		fallback: NewMemorySlot(),
		capacity: capacity,
		logger:   logger,
	}
}

func (s *Store) Capacity() int {
	return s.capacity
}

// Read returns the remaining seats, seeding the slot with the capacity on
// first access. Backend failures are logged and served from memory.
func (s *Store) Read(ctx context.Context) int {
	raw, ok, err := s.slot.Get(ctx)
	if err != nil {
		observability.StoreFallbacks.Inc()
		s.logger.WithField("error", err.Error()).Warn("seat slot unavailable, using in-memory value")
		raw, ok, _ = s.fallback.Get(ctx)
		if n, valid := parse(raw, ok); valid {
			return s.clamp(n)
		}
		return s.capacity
	}
	if n, valid := parse(raw, ok); valid {
		return s.clamp(n)
	}
	return s.seed(ctx)
}

// Write persists n. The in-memory copy follows successful writes only.
func (s *Store) Write(ctx context.Context, n int) error {
	if n < 0 {
		return errors.Newf("negative seat count %d", n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := strconv.Itoa(n)
	if err := s.slot.Set(ctx, raw); err != nil {
		return errors.Wrap(err, "write seats")
	}
	_ = s.fallback.Set(ctx, raw)
	return nil
}

// seed stores the capacity unless another caller stored a valid value since
// the slot was last seen empty.
func (s *Store) seed(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.slot.Get(ctx)
	if err == nil {
		if n, valid := parse(raw, ok); valid {
			return s.clamp(n)
		}
		if ok {
			s.logger.WithField("value", raw).Warn("unparseable seat value, reseeding")
		}
	}
	raw = strconv.Itoa(s.capacity)
	if err := s.slot.Set(ctx, raw); err != nil {
		s.logger.WithField("error", err.Error()).Warn("cannot seed seat slot")
	}
	_ = s.fallback.Set(ctx, raw)
	return s.capacity
}

func parse(raw string, ok bool) (int, bool) {
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func (s *Store) clamp(n int) int {
	return min(max(n, 0), s.capacity)
}
