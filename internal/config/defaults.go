package config

import "time"

const (
	defaultPort     = 8080
	defaultLogLevel = "info"
	defaultStorage  = StoragePostgres
)

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "dorm_delivery",
}

var defaultKafka = Kafka{
	TaskEventsTopic: "task-events",
	GroupID:         "settlement",
}

var defaultRedis = Redis{
	Addr: "127.0.0.1:6379",
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Backend:    RateLimitMemory,
	Rate:       10,
	Burst:      20,
	TTL:        10 * time.Minute,
	MaxBuckets: 10000,
	Window:     time.Second,
}

var defaultPaymentRetry = PaymentRetry{
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    time.Second,
}

var defaultCoordinator = Coordinator{
	MaxAttempts: 3,
	Timeout:     3 * time.Second,
}

var defaultSettlement = Settlement{
	SweepSchedule: "@every 1m",
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultRateLimit returns the default rate limit settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}

// DefaultPaymentRetry returns the default payment gateway retry settings.
func DefaultPaymentRetry() PaymentRetry {
	return defaultPaymentRetry
}

// DefaultCoordinator returns the default coordinator settings.
func DefaultCoordinator() Coordinator {
	return defaultCoordinator
}
