package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/batch-seat-reservations/internal/domain"
	"github.com/robertarktes/batch-seat-reservations/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditLog struct {
	ID        uuid.UUID `bson:"_id"`
	Action    string    `bson:"action"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) LogEvent(ctx context.Context, action string, at time.Time, data map[string]interface{}) error {
	log := AuditLog{
		ID:        uuid.New(),
		Action:    action,
		Timestamp: at,
		Data:      bson.M(data),
	}
	_, err := a.coll.InsertOne(ctx, log)
	if err != nil {
		a.logger.Error("failed to insert audit log", err)
		return err
	}
	return nil
}

// RecordReservation satisfies the seat service recorder hook.
func (a *AuditLogger) RecordReservation(ctx context.Context, ev domain.ReservationEvent) error {
	return a.LogEvent(ctx, "seat.reserved", ev.ReservedAt, map[string]interface{}{
		"reservation_id": ev.ID.String(),
		"seats_left":     ev.SeatsLeft,
	})
}

func (a *AuditLogger) Actions(ctx context.Context, action string) ([]AuditLog, error) {
	cur, err := a.coll.Find(ctx, bson.M{"action": action})
	if err != nil {
		return nil, err
	}
	var logs []AuditLog
	if err := cur.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
