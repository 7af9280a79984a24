package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seats_requests_total",
			Help: "Total number of requests",
		},
		[]string{"route", "code", "method"},
	)

	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seats_reservations_total",
			Help: "Reservation attempts by outcome",
		},
		[]string{"outcome"},
	)

	SeatsRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seats_remaining",
			Help: "Seats left in the current batch as last observed",
		},
	)

	StoreFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seats_store_fallbacks_total",
			Help: "Reads served from the in-memory default because the slot backend failed",
		},
	)

	SlotOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seats_slot_op_seconds",
			Help:    "Duration of durable slot operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seats_outbox_lag_seconds",
			Help: "Lag of outbox publishing",
		},
	)

	RabbitPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seats_rabbit_publish_failures_total",
			Help: "Total failed rabbit publishes",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seats_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
