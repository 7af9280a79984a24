package service

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/robertarktes/batch-seat-reservations/internal/domain"
	"github.com/robertarktes/batch-seat-reservations/internal/observability"
)

const EventBrochureRequested = "brochure.requested"

type LeadStore interface {
	SaveBrochureRequest(ctx context.Context, req domain.BrochureRequest) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key, messageID string, v interface{}) error
}

type BrochureService struct {
	leads  LeadStore
	events EventPublisher
	clock  clockwork.Clock
	logger observability.Logger
}

// NewBrochureService wires lead capture. events may be nil.
func NewBrochureService(leads LeadStore, events EventPublisher, clock clockwork.Clock, logger observability.Logger) *BrochureService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &BrochureService{leads: leads, events: events, clock: clock, logger: logger}
}

func (b *BrochureService) RequestBrochure(ctx context.Context, channel domain.BrochureChannel, email, phone string) (domain.BrochureRequest, error) {
	req, err := domain.NewBrochureRequest(channel, email, phone, b.clock.Now())
	if err != nil {
		return domain.BrochureRequest{}, err
	}
	if err := b.leads.SaveBrochureRequest(ctx, req); err != nil {
		return domain.BrochureRequest{}, domain.Unknown(err, "save brochure request")
	}
	if b.events != nil {
		payload := map[string]interface{}{
			"request_id": req.ID,
			"channel":    req.Channel,
		}
		if err := b.events.PublishJSON(ctx, EventBrochureRequested, req.ID.String(), payload); err != nil {
			observability.RabbitPublishFailures.Inc()
			b.logger.WithField("request_id", req.ID.String()).Warn("publish brochure request failed: ", err)
		}
	}
	return req, nil
}

// MemoryLeads keeps brochure requests in process when no database is configured.
type MemoryLeads struct {
	mu       sync.Mutex
	requests []domain.BrochureRequest
}

func (m *MemoryLeads) SaveBrochureRequest(ctx context.Context, req domain.BrochureRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return nil
}

func (m *MemoryLeads) Requests() []domain.BrochureRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.BrochureRequest(nil), m.requests...)
}
