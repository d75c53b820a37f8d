package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Breaker state values exported by the breaker gauge.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

// Metrics holds every collector the service exports. All Record methods are
// safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	RateLookupsTotal     *prometheus.CounterVec
	ProviderCallsTotal   *prometheus.CounterVec
	ProviderCallDuration *prometheus.HistogramVec
	ProviderRetriesTotal *prometheus.CounterVec
	BreakerState         *prometheus.GaugeVec
	FailoversTotal       *prometheus.CounterVec
	RatesImportedTotal   prometheus.Counter
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RateLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_lookups_total",
				Help: "Rate lookups by where the answer came from and outcome",
			},
			[]string{"origin", "outcome"},
		),
		ProviderCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_calls_total",
				Help: "Logical provider calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		ProviderCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "provider_call_duration_seconds",
				Help:    "Duration of logical provider calls including retries",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"provider"},
		),
		ProviderRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_retries_total",
				Help: "Transport retries issued against a provider",
			},
			[]string{"provider"},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "provider_circuit_breaker_state",
				Help: "Circuit breaker state per provider (0 closed, 1 half-open, 2 open)",
			},
			[]string{"provider"},
		),
		FailoversTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_failovers_total",
				Help: "Provider registry failovers by outcome",
			},
			[]string{"outcome"},
		),
		RatesImportedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rates_imported_total",
				Help: "Exchange rates stored by backfill imports",
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRateLookup counts a finished rate lookup.
func (m *Metrics) RecordRateLookup(origin, outcome string) {
	if m == nil {
		return
	}
	m.RateLookupsTotal.WithLabelValues(origin, outcome).Inc()
}

// RecordProviderCall counts a logical provider call and observes its duration.
func (m *Metrics) RecordProviderCall(provider, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.ProviderCallsTotal.WithLabelValues(provider, outcome).Inc()
	m.ProviderCallDuration.WithLabelValues(provider).Observe(took.Seconds())
}

// RecordRetry counts one transport retry.
func (m *Metrics) RecordRetry(provider string) {
	if m == nil {
		return
	}
	m.ProviderRetriesTotal.WithLabelValues(provider).Inc()
}

// SetBreakerState exports the breaker state for a provider.
func (m *Metrics) SetBreakerState(provider string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(provider).Set(float64(state))
}

// RecordFailover counts a registry rotation.
func (m *Metrics) RecordFailover(outcome string) {
	if m == nil {
		return
	}
	m.FailoversTotal.WithLabelValues(outcome).Inc()
}

// RecordImported adds stored backfill rows.
func (m *Metrics) RecordImported(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RatesImportedTotal.Add(float64(n))
}

// RecordHTTPRequest counts a served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
