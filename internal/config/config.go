package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	SeatCapacity int
	SeatKey      string
	StoreBackend string
	StoreFile    string

	StatusDelay   time.Duration
	ReserveDelay  time.Duration
	PollInterval  time.Duration
	LiveOffset    int
	DismissDelay  time.Duration
	BrochureDelay time.Duration

	HTTPAddr string
	APIURL   string

	CRDBDSN      string
	MongoURI     string
	RedisAddr    string
	RabbitURL    string
	OTLPEndpoint string
	LogLevel     string
	LogFile      string

	RateLimitPerMinute int
	IdempotencyTTL     time.Duration
	OutboxInterval     time.Duration
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendCRDB   = "crdb"
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		SeatCapacity: envInt("SEAT_CAPACITY", 18),
		SeatKey:      envStr("SEAT_KEY", "cg_seats"),
		StoreBackend: envStr("STORE_BACKEND", BackendMemory),
		StoreFile:    os.Getenv("STORE_FILE"),

		StatusDelay:   envDur("STATUS_DELAY", 250*time.Millisecond),
		ReserveDelay:  envDur("RESERVE_DELAY", 420*time.Millisecond),
		PollInterval:  envDur("POLL_INTERVAL", 10*time.Second),
		LiveOffset:    envInt("LIVE_SEAT_OFFSET", 6),
		DismissDelay:  envDur("DISMISS_DELAY", 600*time.Millisecond),
		BrochureDelay: envDur("BROCHURE_DELAY", 13*time.Second),

		HTTPAddr: envStr("HTTP_ADDR", ":8080"),
		APIURL:   os.Getenv("API_URL"),

		CRDBDSN:      os.Getenv("CRDB_DSN"),
		MongoURI:     os.Getenv("MONGO_URI"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RabbitURL:    os.Getenv("RABBIT_URL"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		LogFile:      os.Getenv("LOG_FILE"),

		RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 10),
		IdempotencyTTL:     envDur("IDEMPOTENCY_TTL", time.Hour),
		OutboxInterval:     envDur("OUTBOX_INTERVAL", 5*time.Second),
	}, nil
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

// envDur accepts "0" to disable a delay.
func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
