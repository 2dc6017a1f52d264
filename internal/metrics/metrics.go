package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewGatewayRetriesTotal returns a Prometheus counter for the number of retry attempts performed by the payment gateway
func NewGatewayRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_gateway_retries_total",
		Help: "Total number of retry attempts performed by the payment gateway",
	})
}

// NewTaskTransitionsTotal returns a counter of committed task lifecycle and escrow actions, labelled by action
func NewTaskTransitionsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "task_transitions_total",
		Help: "Total number of committed task actions",
	}, []string{"action"})
}

// NewTaskConflictsTotal returns a counter of optimistic update conflicts, labelled by operation
func NewTaskConflictsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "task_update_conflicts_total",
		Help: "Total number of conditional task updates that lost to a concurrent writer",
	}, []string{"op"})
}

// NewSettlementRefundsTotal returns a counter of refunds issued by the settlement worker, labelled by trigger (event or sweep)
func NewSettlementRefundsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_refunds_total",
		Help: "Total number of held payments refunded automatically",
	}, []string{"trigger"})
}

// NewHTTPRequestsTotal returns a counter of served HTTP requests labelled by method, route pattern and status
func NewHTTPRequestsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
}

// NewHTTPRequestDuration returns a histogram of HTTP request durations labelled by method, route pattern and status
func NewHTTPRequestDuration() *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
}
