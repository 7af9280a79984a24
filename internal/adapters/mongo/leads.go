package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/batch-seat-reservations/internal/domain"
	"github.com/robertarktes/batch-seat-reservations/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type LeadRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewLeadRepository(db *mongo.Database, logger observability.Logger) *LeadRepository {
	return &LeadRepository{
		coll:   db.Collection("brochure_requests"),
		logger: logger,
	}
}

type BrochureDoc struct {
	ID          uuid.UUID `bson:"_id"`
	Channel     string    `bson:"channel"`
	Email       string    `bson:"email,omitempty"`
	Phone       string    `bson:"phone,omitempty"`
	RequestedAt time.Time `bson:"requested_at"`
}

func (r *LeadRepository) SaveBrochureRequest(ctx context.Context, req domain.BrochureRequest) error {
	doc := BrochureDoc{
		ID:          req.ID,
		Channel:     string(req.Channel),
		Email:       req.Email,
		Phone:       req.Phone,
		RequestedAt: req.RequestedAt,
	}
	_, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		r.logger.Error("failed to save brochure request", err)
		return err
	}
	return nil
}

func (r *LeadRepository) GetBrochureRequest(ctx context.Context, id uuid.UUID) (*domain.BrochureRequest, error) {
	var doc BrochureDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get brochure request", err)
		return nil, err
	}
	return &domain.BrochureRequest{
		ID:          doc.ID,
		Channel:     domain.BrochureChannel(doc.Channel),
		Email:       doc.Email,
		Phone:       doc.Phone,
		RequestedAt: doc.RequestedAt,
	}, nil
}
