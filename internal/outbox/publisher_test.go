package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/batch-seat-reservations/internal/adapters/crdb"
	"github.com/robertarktes/batch-seat-reservations/internal/observability"
	"github.com/robertarktes/batch-seat-reservations/internal/outbox"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	records   []crdb.OutboxRecord
	published map[uuid.UUID]time.Time
}

func (s *fakeStore) GetUnpublishedOutbox(ctx context.Context, limit int) ([]crdb.OutboxRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []crdb.OutboxRecord
	for _, rec := range s.records {
		if _, done := s.published[rec.ID]; !done && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published[id] = at
	return nil
}

func (s *fakeStore) publishedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

type fakeSender struct {
	mu   sync.Mutex
	fail map[string]bool
	sent []string
}

func (f *fakeSender) Publish(ctx context.Context, key string, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[msg.MessageId] {
		return errors.New("channel closed")
	}
	f.sent = append(f.sent, key+"/"+msg.MessageId)
	return nil
}

func record(dedupe string) crdb.OutboxRecord {
	return crdb.OutboxRecord{
		ID:        uuid.New(),
		EventType: crdb.EventSeatReserved,
		Payload:   []byte(`{}`),
		DedupeKey: dedupe,
		CreatedAt: time.Now(),
	}
}

func TestPublisher_FlushSkipsFailedRecords(t *testing.T) {
	store := &fakeStore{records: []crdb.OutboxRecord{record("a"), record("b"), record("c")}, published: map[uuid.UUID]time.Time{}}
	sender := &fakeSender{fail: map[string]bool{"b": true}}
	p := outbox.NewPublisher(store, sender, observability.NopLogger(), clockwork.NewFakeClock(), time.Second)

	n, err := p.Flush(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []string{"seat.reserved/a", "seat.reserved/c"}, sender.sent)

	sender.fail = nil
	n, err = p.Flush(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 3, store.publishedCount())
}

func TestPublisher_RunStopsOnCancel(t *testing.T) {
	store := &fakeStore{records: []crdb.OutboxRecord{record("a")}, published: map[uuid.UUID]time.Time{}}
	clock := clockwork.NewFakeClock()
	p := outbox.NewPublisher(store, &fakeSender{}, observability.NopLogger(), clock, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	clock.BlockUntil(1)
	clock.Advance(5 * time.Second)
	require.Eventually(t, func() bool { return store.publishedCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop")
	}
}
