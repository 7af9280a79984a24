package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/batch-seat-reservations/internal/adapters/crdb"
	"github.com/robertarktes/batch-seat-reservations/internal/observability"
)

const batchSize = 10

type Store interface {
	GetUnpublishedOutbox(ctx context.Context, limit int) ([]crdb.OutboxRecord, error)
	MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error
}

type Sender interface {
	Publish(ctx context.Context, key string, msg amqp.Publishing) error
}

type Publisher struct {
	store    Store
	sender   Sender
	logger   observability.Logger
	clock    clockwork.Clock
	interval time.Duration
}

func NewPublisher(store Store, sender Sender, logger observability.Logger, clock clockwork.Clock, interval time.Duration) *Publisher {
	return &Publisher{store: store, sender: sender, logger: logger, clock: clock, interval: interval}
}

func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info("Outbox publisher started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.clock.After(p.interval):
			if _, err := p.Flush(ctx); err != nil {
				p.logger.Error("outbox flush failed: ", err)
			}
		}
	}
}

// Flush relays one batch of pending records and returns how many were
// published. A record whose publish fails stays NEW for the next round.
func (p *Publisher) Flush(ctx context.Context) (int, error) {
	records, err := p.store.GetUnpublishedOutbox(ctx, batchSize)
	if err != nil {
		return 0, err
	}
	published := 0
	for _, rec := range records {
		msg := amqp.Publishing{
			MessageId:    rec.DedupeKey,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         rec.Payload,
		}
		if err := p.sender.Publish(ctx, rec.EventType, msg); err != nil {
			observability.RabbitPublishFailures.Inc()
			p.logger.WithField("outbox_id", rec.ID.String()).Warn("publish failed: ", err)
			continue
		}
		now := p.clock.Now()
		if err := p.store.MarkPublished(ctx, rec.ID, now); err != nil {
			p.logger.WithField("outbox_id", rec.ID.String()).Error("mark published failed: ", err)
			continue
		}
		observability.OutboxLag.Set(now.Sub(rec.CreatedAt).Seconds())
		published++
	}
	return published, nil
}
