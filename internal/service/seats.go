// Package service simulates the remote seat API: fixed latency, a shared
// counter and a sold-out failure mode.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robertarktes/batch-seat-reservations/internal/domain"
	"github.com/robertarktes/batch-seat-reservations/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultStatusDelay  = 250 * time.Millisecond
	DefaultReserveDelay = 420 * time.Millisecond
)

type SeatStore interface {
	Read(ctx context.Context) int
	Write(ctx context.Context, n int) error
}

// Recorder receives an event after every successful reservation.
type Recorder interface {
	RecordReservation(ctx context.Context, ev domain.ReservationEvent) error
}

type Options struct {
	StatusDelay  time.Duration
	ReserveDelay time.Duration
	Clock        clockwork.Clock
	Recorders    []Recorder
	Logger       observability.Logger
}

type SeatService struct {
	store        SeatStore
	clock        clockwork.Clock
	statusDelay  time.Duration
	reserveDelay time.Duration
	recorders    []Recorder
	logger       observability.Logger

	// mu serializes read-decrement-write so overlapping reservations never
	// lose an update.
	mu sync.Mutex
}

func NewSeatService(store SeatStore, opts Options) *SeatService {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}
	return &SeatService{
		store:        store,
		clock:        opts.Clock,
		statusDelay:  opts.StatusDelay,
		reserveDelay: opts.ReserveDelay,
		recorders:    opts.Recorders,
		logger:       opts.Logger,
	}
}

func (s *SeatService) GetStatus(ctx context.Context) (domain.BatchStatus, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "SeatService.GetStatus")
	defer span.End()

	if err := s.wait(ctx, s.statusDelay); err != nil {
		return domain.BatchStatus{}, err
	}
	seats := s.store.Read(ctx)
	observability.SeatsRemaining.Set(float64(seats))
	span.SetAttributes(attribute.Int("seats_left", seats))
	return domain.BatchStatus{SeatsLeft: seats, LastReserved: s.clock.Now()}, nil
}

// ReserveSeat consumes one seat. The payload is not inspected; callers
// validate it beforehand.
func (s *SeatService) ReserveSeat(ctx context.Context, req domain.ReservationRequest) (domain.ReservationResult, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "SeatService.ReserveSeat")
	defer span.End()

	if err := s.wait(ctx, s.reserveDelay); err != nil {
		return s.fail(span, err)
	}

	seats, err := s.reserve(ctx)
	if err != nil {
		return s.fail(span, err)
	}

	observability.ReservationsTotal.WithLabelValues("success").Inc()
	observability.SeatsRemaining.Set(float64(seats))
	span.SetAttributes(attribute.Int("seats_left", seats))

	s.record(ctx, domain.NewReservationEvent(seats, s.clock.Now()))
	return domain.ReservationResult{Success: true, SeatsLeft: seats}, nil
}

func (s *SeatService) reserve(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seats := s.store.Read(ctx)
	if seats <= 0 {
		return 0, domain.ErrSoldOut
	}
	seats = max(0, seats-1)
	if err := s.store.Write(ctx, seats); err != nil {
		return 0, domain.Unknown(err, "persist seats")
	}
	return seats, nil
}

func (s *SeatService) fail(span trace.Span, err error) (domain.ReservationResult, error) {
	kind := domain.KindOf(err)
	observability.ReservationsTotal.WithLabelValues(string(kind)).Inc()
	if kind != domain.ErrorKindSoldOut {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		s.logger.WithField("error", err.Error()).Warn("reservation failed")
	}
	return domain.ReservationResult{ErrorKind: kind}, err
}

// record fans the event out to every recorder. Failures are logged only.
func (s *SeatService) record(ctx context.Context, ev domain.ReservationEvent) {
	if len(s.recorders) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var g errgroup.Group
	for _, r := range s.recorders {
		g.Go(func() error {
			return r.RecordReservation(ctx, ev)
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WithField("reservation_id", ev.ID.String()).Warn("recording reservation failed: ", err)
	}
}

func (s *SeatService) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(d):
		return nil
	}
}
