package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	"dorm-delivery/internal/http/middleware"
	"dorm-delivery/internal/metrics"
)

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

type metricsOut struct {
	dig.Out

	RateLimitExceeded prometheus.Counter     `name:"rate_limit_exceeded_total"`
	GatewayRetries    prometheus.Counter     `name:"payment_gateway_retries_total"`
	Transitions       *prometheus.CounterVec `name:"task_transitions_total"`
	Conflicts         *prometheus.CounterVec `name:"task_update_conflicts_total"`
	Refunds           *prometheus.CounterVec `name:"settlement_refunds_total"`
	HTTP              middleware.HTTPMetrics
}

func newMetrics(reg *prometheus.Registry) (metricsOut, error) {
	out := metricsOut{
		RateLimitExceeded: metrics.NewRateLimitExceededTotal(),
		GatewayRetries:    metrics.NewGatewayRetriesTotal(),
		Transitions:       metrics.NewTaskTransitionsTotal(),
		Conflicts:         metrics.NewTaskConflictsTotal(),
		Refunds:           metrics.NewSettlementRefundsTotal(),
		HTTP: middleware.HTTPMetrics{
			Requests: metrics.NewHTTPRequestsTotal(),
			Duration: metrics.NewHTTPRequestDuration(),
		},
	}
	for _, c := range []prometheus.Collector{
		out.RateLimitExceeded, out.GatewayRetries, out.Transitions, out.Conflicts, out.Refunds,
		out.HTTP.Requests, out.HTTP.Duration,
	} {
		if err := reg.Register(c); err != nil {
			return metricsOut{}, fmt.Errorf("register metrics: %w", err)
		}
	}
	return out, nil
}
