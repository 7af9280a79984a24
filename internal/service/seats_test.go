package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/robertarktes/batch-seat-reservations/internal/domain"
	"github.com/robertarktes/batch-seat-reservations/internal/observability"
	"github.com/robertarktes/batch-seat-reservations/internal/seatstore"
	"github.com/robertarktes/batch-seat-reservations/internal/service"
	"github.com/stretchr/testify/require"
)

var validRequest = domain.NewReservationRequest(map[string]string{"name": "A", "email": "a@x.com", "phone": "1"})

func newStore(t *testing.T, capacity int) (*seatstore.Store, *seatstore.MemorySlot) {
	t.Helper()
	slot := seatstore.NewMemorySlot()
	return seatstore.New(slot, capacity, observability.NopLogger()), slot
}

func TestSeatService_HappyPath(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t, 18)
	svc := service.NewSeatService(store, service.Options{})

	res, err := svc.ReserveSeat(ctx, validRequest)
	require.NoError(t, err)
	require.Equal(t, domain.ReservationResult{Success: true, SeatsLeft: 17}, res)

	status, err := svc.GetStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, 17, status.SeatsLeft)
}

func TestSeatService_Exhaustion(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t, 18)
	require.NoError(t, store.Write(ctx, 1))
	svc := service.NewSeatService(store, service.Options{})

	res, err := svc.ReserveSeat(ctx, validRequest)
	require.NoError(t, err)
	require.Equal(t, 0, res.SeatsLeft)

	for i := 0; i < 3; i++ {
		res, err = svc.ReserveSeat(ctx, validRequest)
		require.ErrorIs(t, err, domain.ErrSoldOut)
		require.False(t, res.Success)
		require.Equal(t, domain.ErrorKindSoldOut, res.ErrorKind)
		require.Equal(t, 0, store.Read(ctx))
	}

	status, err := svc.GetStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, status.SeatsLeft)
}

func TestSeatService_MonotonicDecrementBound(t *testing.T) {
	ctx := context.Background()
	for _, calls := range []int{0, 1, 5, 18, 19, 40} {
		store, _ := newStore(t, 18)
		svc := service.NewSeatService(store, service.Options{})

		successes := 0
		for i := 0; i < calls; i++ {
			if _, err := svc.ReserveSeat(ctx, validRequest); err == nil {
				successes++
			}
			require.GreaterOrEqual(t, store.Read(ctx), 0)
		}
		require.Equal(t, max(0, 18-successes), store.Read(ctx), "calls=%d", calls)
		require.Equal(t, min(calls, 18), successes)
	}
}

func TestSeatService_StatusReflectsStore(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t, 18)
	clock := clockwork.NewFakeClockAt(time.Unix(1700000000, 0))
	svc := service.NewSeatService(store, service.Options{Clock: clock})

	for _, n := range []int{18, 9, 0} {
		require.NoError(t, store.Write(ctx, n))
		status, err := svc.GetStatus(ctx)
		require.NoError(t, err)
		require.Equal(t, store.Read(ctx), status.SeatsLeft)
		require.Equal(t, clock.Now(), status.LastReserved)
	}
}

func TestSeatService_ConcurrentSubmits(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t, 18)
	clock := clockwork.NewFakeClock()
	svc := service.NewSeatService(store, service.Options{ReserveDelay: 420 * time.Millisecond, Clock: clock})

	results := make(chan domain.ReservationResult, 2)
	for i := 0; i < 2; i++ {
		go func() {
			res, err := svc.ReserveSeat(ctx, validRequest)
			if err != nil {
				t.Error(err)
			}
			results <- res
		}()
	}

	clock.BlockUntil(2)
	clock.Advance(420 * time.Millisecond)

	got := map[int]bool{}
	for i := 0; i < 2; i++ {
		got[(<-results).SeatsLeft] = true
	}
	require.Equal(t, map[int]bool{16: true, 17: true}, got)
	require.Equal(t, 16, store.Read(ctx))
}

func TestSeatService_ManyConcurrentReservations(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t, 18)
	svc := service.NewSeatService(store, service.Options{})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		soldOut   int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ReserveSeat(ctx, validRequest)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrSoldOut):
				soldOut++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 18, successes)
	require.Equal(t, 32, soldOut)
	require.Equal(t, 0, store.Read(ctx))
}

func TestSeatService_DelayIsHonoured(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t, 18)
	clock := clockwork.NewFakeClock()
	svc := service.NewSeatService(store, service.Options{StatusDelay: 250 * time.Millisecond, Clock: clock})

	done := make(chan domain.BatchStatus, 1)
	go func() {
		status, _ := svc.GetStatus(ctx)
		done <- status
	}()

	clock.BlockUntil(1)
	clock.Advance(249 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("status resolved before its delay")
	case <-time.After(20 * time.Millisecond):
	}

	clock.Advance(time.Millisecond)
	select {
	case status := <-done:
		require.Equal(t, 18, status.SeatsLeft)
	case <-time.After(time.Second):
		t.Fatal("status never resolved")
	}
}

func TestSeatService_CancelledReservationDoesNotMutate(t *testing.T) {
	store, _ := newStore(t, 18)
	clock := clockwork.NewFakeClock()
	svc := service.NewSeatService(store, service.Options{ReserveDelay: time.Second, Clock: clock})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := svc.ReserveSeat(ctx, validRequest)
		errCh <- err
	}()
	clock.BlockUntil(1)
	cancel()

	err := <-errCh
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, domain.ErrorKindUnknown, domain.KindOf(err))
	require.Equal(t, 18, store.Read(context.Background()))
}

type failingSlot struct{ seatstore.MemorySlot }

func (f *failingSlot) Set(ctx context.Context, value string) error {
	return errors.New("quota exceeded")
}

func TestSeatService_WriteFailureIsUnknown(t *testing.T) {
	ctx := context.Background()
	store := seatstore.New(&failingSlot{}, 18, observability.NopLogger())
	svc := service.NewSeatService(store, service.Options{})

	res, err := svc.ReserveSeat(ctx, validRequest)
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrUnknown))
	require.Equal(t, domain.ErrorKindUnknown, res.ErrorKind)
	require.False(t, res.Success)
}

type captureRecorder struct {
	mu     sync.Mutex
	events []domain.ReservationEvent
	err    error
}

func (c *captureRecorder) RecordReservation(ctx context.Context, ev domain.ReservationEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return c.err
}

func TestSeatService_RecordersSeeEveryReservation(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t, 2)
	ok := &captureRecorder{}
	broken := &captureRecorder{err: errors.New("outbox down")}
	svc := service.NewSeatService(store, service.Options{Recorders: []service.Recorder{ok, broken}})

	for i := 0; i < 3; i++ {
		_, _ = svc.ReserveSeat(ctx, validRequest)
	}

	require.Len(t, ok.events, 2)
	require.Len(t, broken.events, 2)
	require.Equal(t, 1, ok.events[0].SeatsLeft)
	require.Equal(t, 0, ok.events[1].SeatsLeft)
	require.NotEqual(t, ok.events[0].ID, ok.events[1].ID)
}

// pausedSlot stalls the first Get until release is closed, after it has
// already observed the inner slot.
type pausedSlot struct {
	*seatstore.MemorySlot
	once    sync.Once
	parked  chan struct{}
	release chan struct{}
}

func (p *pausedSlot) Get(ctx context.Context) (string, bool, error) {
	value, ok, err := p.MemorySlot.Get(ctx)
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.parked)
		<-p.release
	}
	return value, ok, err
}

func TestSeatService_StatusDuringFirstReservationKeepsDecrement(t *testing.T) {
	ctx := context.Background()
	slot := &pausedSlot{
		MemorySlot: seatstore.NewMemorySlot(),
		parked:     make(chan struct{}),
		release:    make(chan struct{}),
	}
	store := seatstore.New(slot, 18, observability.NopLogger())
	svc := service.NewSeatService(store, service.Options{})

	statuses := make(chan domain.BatchStatus, 1)
	go func() {
		status, _ := svc.GetStatus(ctx)
		statuses <- status
	}()
	<-slot.parked

	res, err := svc.ReserveSeat(ctx, validRequest)
	require.NoError(t, err)
	require.Equal(t, 17, res.SeatsLeft)

	close(slot.release)
	require.Equal(t, 17, (<-statuses).SeatsLeft)
	require.Equal(t, 17, store.Read(ctx))
}
