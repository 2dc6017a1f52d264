package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Rate limit backends.
const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

// Config stores service and worker settings.
type Config struct {
	Port     int
	LogLevel string
	Storage  string
	Pprof    bool

	DB           DB
	Kafka        Kafka
	Redis        Redis
	RateLimit    RateLimit
	PaymentRetry PaymentRetry
	Coordinator  Coordinator
	Settlement   Settlement
}

// DB stores Postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns the pgx connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		d.User, d.Pass, net.JoinHostPort(d.Host, d.Port), d.Name)
}

// Kafka stores task event stream settings. Empty Brokers disables Kafka.
type Kafka struct {
	Brokers         []string
	TaskEventsTopic string
	GroupID         string
}

// Enabled reports whether brokers are configured.
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

// Redis stores the rate limit store connection.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// RateLimit stores HTTP rate limit settings. The memory backend is a token
// bucket (Rate, Burst); the redis backend allows Burst requests per Window.
type RateLimit struct {
	Enabled    bool
	Backend    string
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
	Window     time.Duration
}

// PaymentRetry stores payment gateway retry settings.
type PaymentRetry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Coordinator stores task coordinator settings.
type Coordinator struct {
	MaxAttempts int
	Timeout     time.Duration
}

// Settlement stores the refund sweeper schedule (cron spec).
type Settlement struct {
	SweepSchedule string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	e := &envReader{}
	cfg := &Config{
		Port:     e.getInt("PORT", defaultPort),
		LogLevel: e.getString("LOG_LEVEL", defaultLogLevel),
		Storage:  e.getString("STORAGE_DRIVER", defaultStorage),
		Pprof:    e.getBool("PPROF_ENABLED", false),
		DB: DB{
			Host: e.getString("POSTGRES_HOST", defaultDB.Host),
			Port: e.getString("POSTGRES_PORT", defaultDB.Port),
			User: e.getString("POSTGRES_USER", defaultDB.User),
			Pass: e.getString("POSTGRES_PASSWORD", defaultDB.Pass),
			Name: e.getString("POSTGRES_DB", defaultDB.Name),
		},
		Kafka: Kafka{
			Brokers:         e.getList("KAFKA_BROKERS"),
			TaskEventsTopic: e.getString("KAFKA_TASK_EVENTS_TOPIC", defaultKafka.TaskEventsTopic),
			GroupID:         e.getString("KAFKA_GROUP_ID", defaultKafka.GroupID),
		},
		Redis: Redis{
			Addr:     e.getString("REDIS_ADDR", defaultRedis.Addr),
			Password: e.getString("REDIS_PASSWORD", ""),
			DB:       e.getInt("REDIS_DB", 0),
		},
		RateLimit: RateLimit{
			Enabled:    e.getBool("RATE_LIMIT_ENABLED", defaultRateLimit.Enabled),
			Backend:    e.getString("RATE_LIMIT_BACKEND", defaultRateLimit.Backend),
			Rate:       e.getFloat("RATE_LIMIT_RATE", defaultRateLimit.Rate),
			Burst:      e.getInt("RATE_LIMIT_BURST", defaultRateLimit.Burst),
			TTL:        e.getDuration("RATE_LIMIT_TTL", defaultRateLimit.TTL),
			MaxBuckets: e.getInt("RATE_LIMIT_MAX_BUCKETS", defaultRateLimit.MaxBuckets),
			Window:     e.getDuration("RATE_LIMIT_WINDOW", defaultRateLimit.Window),
		},
		PaymentRetry: PaymentRetry{
			MaxAttempts: e.getInt("PAYMENT_RETRY_MAX_ATTEMPTS", defaultPaymentRetry.MaxAttempts),
			BaseDelay:   e.getDuration("PAYMENT_RETRY_BASE_DELAY", defaultPaymentRetry.BaseDelay),
			MaxDelay:    e.getDuration("PAYMENT_RETRY_MAX_DELAY", defaultPaymentRetry.MaxDelay),
		},
		Coordinator: Coordinator{
			MaxAttempts: e.getInt("COORDINATOR_MAX_ATTEMPTS", defaultCoordinator.MaxAttempts),
			Timeout:     e.getDuration("COORDINATOR_TIMEOUT", defaultCoordinator.Timeout),
		},
		Settlement: Settlement{
			SweepSchedule: e.getString("SETTLEMENT_SWEEP_SCHEDULE", defaultSettlement.SweepSchedule),
		},
	}
	if e.err != nil {
		return nil, e.err
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	pflag.StringVar(&cfg.Storage, "storage", cfg.Storage, "task storage: postgres or memory")
	pflag.CommandLine.ParseErrorsWhitelist.UnknownFlags = true
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %d", c.Port))
	}
	if p, err := strconv.Atoi(c.DB.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("invalid POSTGRES_PORT: %q", c.DB.Port))
	}
	if c.Storage != StoragePostgres && c.Storage != StorageMemory {
		errs = append(errs, fmt.Errorf("invalid STORAGE_DRIVER: %q", c.Storage))
	}
	if b := c.RateLimit.Backend; b != RateLimitMemory && b != RateLimitRedis {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_BACKEND: %q", b))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate limit rate and burst must be positive"))
	}
	if c.PaymentRetry.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("invalid PAYMENT_RETRY_MAX_ATTEMPTS: %d", c.PaymentRetry.MaxAttempts))
	}
	if c.Coordinator.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("invalid COORDINATOR_MAX_ATTEMPTS: %d", c.Coordinator.MaxAttempts))
	}
	if c.Coordinator.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid COORDINATOR_TIMEOUT: %s", c.Coordinator.Timeout))
	}
	return errors.Join(errs...)
}

// envReader reads typed variables and keeps the first parse error.
type envReader struct{ err error }

func (e *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) fail(key, v string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
}

func (e *envReader) getString(key, def string) string {
	if v, ok := e.lookup(key); ok {
		return v
	}
	return def
}

func (e *envReader) getInt(key string, def int) int {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return n
}

func (e *envReader) getFloat(key string, def float64) float64 {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return f
}

func (e *envReader) getBool(key string, def bool) bool {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return b
}

func (e *envReader) getDuration(key string, def time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return d
}

func (e *envReader) getList(key string) []string {
	v, ok := e.lookup(key)
	if !ok {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
