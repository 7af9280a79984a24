// Package app assembles the seat service and its infrastructure from config.
package app

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/robertarktes/batch-seat-reservations/internal/adapters/crdb"
	"github.com/robertarktes/batch-seat-reservations/internal/adapters/file"
	mongoadapter "github.com/robertarktes/batch-seat-reservations/internal/adapters/mongo"
	"github.com/robertarktes/batch-seat-reservations/internal/adapters/rabbit"
	redisadapter "github.com/robertarktes/batch-seat-reservations/internal/adapters/redis"
	"github.com/robertarktes/batch-seat-reservations/internal/config"
	httpapi "github.com/robertarktes/batch-seat-reservations/internal/http"
	"github.com/robertarktes/batch-seat-reservations/internal/idempotency"
	"github.com/robertarktes/batch-seat-reservations/internal/observability"
	"github.com/robertarktes/batch-seat-reservations/internal/rateLimit"
	"github.com/robertarktes/batch-seat-reservations/internal/seatstore"
	"github.com/robertarktes/batch-seat-reservations/internal/service"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoDatabase = "seats"

// Runtime holds the services and the connections they depend on.
type Runtime struct {
	Store       *seatstore.Store
	Seats       *service.SeatService
	Brochures   *service.BrochureService
	Courses     service.CourseStore
	Checks      map[string]httpapi.Check
	RateLimiter *rateLimit.RateLimiter
	Idempotency *idempotency.Idempotency

	closers []func()
}

// Build connects every configured dependency. Optional ones (Mongo, Redis
// outside the redis backend, RabbitMQ) are skipped when their address is empty.
func Build(ctx context.Context, cfg *config.Config, logger observability.Logger) (rt *Runtime, err error) {
	rt = &Runtime{Checks: map[string]httpapi.Check{}}
	defer func() {
		if err != nil {
			rt.Close()
			rt = nil
		}
	}()

	var recorders []service.Recorder

	var redis *redisclient.Client
	if cfg.RedisAddr != "" {
		redis = redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
		rt.closers = append(rt.closers, func() { _ = redis.Close() })
		rt.Checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx).Err() }
		rt.RateLimiter = rateLimit.NewRateLimiter(redisadapter.NewCache(redis), cfg.RateLimitPerMinute, time.Minute, logger)
		rt.Idempotency = idempotency.NewIdempotency(redisadapter.NewReplayStore(redis), cfg.IdempotencyTTL)
	}

	var repo *crdb.Repository
	if cfg.CRDBDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.CRDBDSN)
		if err != nil {
			return rt, errors.Wrap(err, "connect crdb")
		}
		rt.closers = append(rt.closers, pool.Close)
		rt.Checks["crdb"] = pool.Ping
		repo = crdb.NewRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			return rt, errors.Wrap(err, "migrate crdb")
		}
		recorders = append(recorders, repo)
	}

	var leads service.LeadStore = &service.MemoryLeads{}
	rt.Courses = service.NewMemoryCourses()
	if cfg.MongoURI != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return rt, errors.Wrap(err, "connect mongo")
		}
		rt.closers = append(rt.closers, func() { _ = client.Disconnect(context.Background()) })
		rt.Checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
		db := client.Database(mongoDatabase)
		leads = mongoadapter.NewLeadRepository(db, logger)
		recorders = append(recorders, mongoadapter.NewAuditLogger(db, logger))
		courses := mongoadapter.NewCourseRepository(db, logger)
		if err := courses.Seed(ctx, time.Now().UTC()); err != nil {
			return rt, errors.Wrap(err, "seed courses")
		}
		rt.Courses = courses
	}

	var events service.EventPublisher
	if cfg.RabbitURL != "" {
		conn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			return rt, errors.Wrap(err, "connect rabbitmq")
		}
		rt.closers = append(rt.closers, func() { _ = conn.Close() })
		pub, err := rabbit.NewPublisher(conn)
		if err != nil {
			return rt, errors.Wrap(err, "open rabbitmq channel")
		}
		rt.closers = append(rt.closers, func() { _ = pub.Close() })
		rt.Checks["rabbitmq"] = func(context.Context) error {
			if conn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
		events = pub
	}

	slot, err := selectSlot(cfg, redis, repo)
	if err != nil {
		return rt, err
	}
	rt.Store = seatstore.New(seatstore.Instrument(cfg.StoreBackend, slot), cfg.SeatCapacity, logger)
	rt.Seats = service.NewSeatService(rt.Store, service.Options{
		StatusDelay:  cfg.StatusDelay,
		ReserveDelay: cfg.ReserveDelay,
		Recorders:    recorders,
		Logger:       logger,
	})
	rt.Brochures = service.NewBrochureService(leads, events, nil, logger)

	logger.WithField("backend", cfg.StoreBackend).
		WithField("capacity", cfg.SeatCapacity).
		Info("seat service ready")
	return rt, nil
}

func selectSlot(cfg *config.Config, redis *redisclient.Client, repo *crdb.Repository) (seatstore.Slot, error) {
	switch cfg.StoreBackend {
	case "", config.BackendMemory:
		return seatstore.NewMemorySlot(), nil
	case config.BackendFile:
		slot, err := file.NewSlot(cfg.StoreFile, cfg.SeatKey)
		if err != nil {
			return nil, errors.Wrap(err, "open seat file")
		}
		return slot, nil
	case config.BackendRedis:
		if redis == nil {
			return nil, errors.New("redis backend needs REDIS_ADDR")
		}
		return redisadapter.NewSlot(redis, cfg.SeatKey), nil
	case config.BackendCRDB:
		if repo == nil {
			return nil, errors.New("crdb backend needs CRDB_DSN")
		}
		return repo.Slot(cfg.SeatKey), nil
	default:
		return nil, errors.Newf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Close releases connections in reverse order of creation.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}
