// Package seatstore keeps the remaining-seat counter in a durable key-value
// slot and degrades to an in-memory value when the slot is unavailable.
package seatstore

import (
	"context"
	"sync"
	"time"

	"github.com/robertarktes/batch-seat-reservations/internal/observability"
)

// Slot is a single named durable value. ok is false when nothing has been
// stored yet.
type Slot interface {
	Get(ctx context.Context) (value string, ok bool, err error)
	Set(ctx context.Context, value string) error
}

type MemorySlot struct {
	mu    sync.RWMutex
	value string
	ok    bool
}

var _ Slot = &MemorySlot{}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (m *MemorySlot) Get(ctx context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value, m.ok, nil
}

func (m *MemorySlot) Set(ctx context.Context, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	m.ok = true
	return nil
}

type instrumentedSlot struct {
	backend string
	slot    Slot
}

// Instrument records slot latency under the given backend label.
func Instrument(backend string, slot Slot) Slot {
	return &instrumentedSlot{backend: backend, slot: slot}
}

func (s *instrumentedSlot) Get(ctx context.Context) (string, bool, error) {
	defer observe(s.backend, "get", time.Now())
	return s.slot.Get(ctx)
}

func (s *instrumentedSlot) Set(ctx context.Context, value string) error {
	defer observe(s.backend, "set", time.Now())
	return s.slot.Set(ctx, value)
}

func observe(backend, op string, started time.Time) {
	observability.SlotOpDuration.WithLabelValues(backend, op).Observe(time.Since(started).Seconds())
}
