package crdb

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robertarktes/batch-seat-reservations/internal/seatstore"
)

const (
	SerializationFailureCode = "40001"
)

var ErrSerializationFailure = errors.New("serialization failure")

const schema = `
CREATE TABLE IF NOT EXISTS seat_slots (
	key STRING PRIMARY KEY,
	value STRING NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS outbox (
	id UUID PRIMARY KEY,
	aggregate_type STRING NOT NULL,
	aggregate_id UUID NOT NULL,
	event_type STRING NOT NULL,
	payload_json JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	published_at TIMESTAMPTZ,
	status STRING NOT NULL DEFAULT 'NEW',
	dedupe_key STRING NOT NULL
);
`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return errors.Wrap(err, "migrate")
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "SET TRANSACTION ISOLATION LEVEL SERIALIZABLE")
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == SerializationFailureCode {
			return ErrSerializationFailure
		}
		return err
	}

	return tx.Commit(ctx)
}

// Slot returns the durable slot stored under key in seat_slots.
func (r *Repository) Slot(key string) *Slot {
	return &Slot{repo: r, key: key}
}

type Slot struct {
	repo *Repository
	key  string
}

var _ seatstore.Slot = &Slot{}

func (s *Slot) Get(ctx context.Context) (string, bool, error) {
	var value string
	err := s.repo.pool.QueryRow(ctx, `SELECT value FROM seat_slots WHERE key = $1`, s.key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "select slot %s", s.key)
	}
	return value, true, nil
}

func (s *Slot) Set(ctx context.Context, value string) error {
	return s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPSERT INTO seat_slots (key, value, updated_at) VALUES ($1, $2, now())
		`, s.key, value)
		return errors.Wrapf(err, "upsert slot %s", s.key)
	})
}
