package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/batch-seat-reservations/internal/domain"
	"github.com/robertarktes/batch-seat-reservations/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CourseRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewCourseRepository(db *mongo.Database, logger observability.Logger) *CourseRepository {
	return &CourseRepository{
		coll:   db.Collection("courses"),
		logger: logger,
	}
}

type CourseDoc struct {
	ID         string          `bson:"_id"`
	Position   int             `bson:"position"`
	Title      string          `bson:"title"`
	Subtitle   string          `bson:"subtitle"`
	Curriculum []CurriculumDoc `bson:"curriculum"`
	Outcomes   string          `bson:"outcomes"`
	CreatedAt  time.Time       `bson:"created_at"`
	UpdatedAt  time.Time       `bson:"updated_at"`
}

type CurriculumDoc struct {
	Period  string `bson:"period"`
	Topic   string `bson:"topic"`
	Details string `bson:"details"`
}

func (r *CourseRepository) GetCourse(ctx context.Context, id string) (domain.Course, error) {
	var doc CourseDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": domain.NormalizeCourseID(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Course{}, domain.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get course", err)
		return domain.Course{}, err
	}
	return doc.toDomain(), nil
}

func (r *CourseRepository) ListCourses(ctx context.Context) ([]domain.Course, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		r.logger.Error("failed to list courses", err)
		return nil, err
	}
	var docs []CourseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Course, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// SaveCourse upserts c at the given catalog position, keeping created_at.
func (r *CourseRepository) SaveCourse(ctx context.Context, position int, c domain.Course, now time.Time) error {
	items := make([]CurriculumDoc, 0, len(c.Curriculum))
	for _, it := range c.Curriculum {
		items = append(items, CurriculumDoc{Period: it.Period, Topic: it.Topic, Details: it.Details})
	}
	update := bson.M{
		"$set": bson.M{
			"position":   position,
			"title":      c.Title,
			"subtitle":   c.Subtitle,
			"curriculum": items,
			"outcomes":   c.Outcomes,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := r.coll.UpdateByID(ctx, domain.NormalizeCourseID(c.ID), update, options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("failed to save course", err)
		return err
	}
	return nil
}

// Seed inserts the built-in catalog. Existing documents are left untouched so
// edits made in the database survive restarts.
func (r *CourseRepository) Seed(ctx context.Context, now time.Time) error {
	for i, c := range domain.DefaultCourses() {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": c.ID})
		if err != nil {
			return errors.Wrap(err, "count courses")
		}
		if n > 0 {
			continue
		}
		if err := r.SaveCourse(ctx, i, c, now); err != nil {
			return errors.Wrapf(err, "seed course %s", c.ID)
		}
	}
	return nil
}

func (d CourseDoc) toDomain() domain.Course {
	c := domain.Course{
		ID:       d.ID,
		Title:    d.Title,
		Subtitle: d.Subtitle,
		Outcomes: d.Outcomes,
	}
	for _, it := range d.Curriculum {
		c.Curriculum = append(c.Curriculum, domain.CurriculumItem{Period: it.Period, Topic: it.Topic, Details: it.Details})
	}
	return c
}
