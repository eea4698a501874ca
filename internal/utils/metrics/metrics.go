package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Role metrics
	RoleResolutionsTotal *prometheus.CounterVec
	ReconciliationsTotal *prometheus.CounterVec

	// Event transport metrics
	EventsConsumedTotal  *prometheus.CounterVec
	EventHandlerDuration *prometheus.HistogramVec

	// Actor query breaker
	ActorQueryBreakerState prometheus.Gauge
}

// New creates a new Metrics instance registered on the default registry.
func New(namespace string) *Metrics {
	return NewWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new Metrics instance registered on reg.
func NewWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "storefront"
	}
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Role metrics
		RoleResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "role",
				Name:      "resolutions_total",
				Help:      "Total number of role resolutions",
			},
			[]string{"role", "source"},
		),
		ReconciliationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "role",
				Name:      "reconciliations_total",
				Help:      "Total number of invite reconciliations",
			},
			[]string{"outcome"}, // written, no_target, write_failed
		),

		// Event transport metrics
		EventsConsumedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "consumed_total",
				Help:      "Total number of consumed invite events",
			},
			[]string{"transport", "status"}, // status: ok, malformed, failed
		),
		EventHandlerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "handler_duration_seconds",
				Help:      "Event handler duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"event"},
		),

		ActorQueryBreakerState: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "actor_query",
				Name:      "breaker_state",
				Help:      "Actor query circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
		),
	}
}

// --- Convenience methods ---

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := statusCodeToString(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRoleResolution records a resolved role and its deciding source.
func (m *Metrics) RecordRoleResolution(role, source string) {
	m.RoleResolutionsTotal.WithLabelValues(role, source).Inc()
}

// RecordReconciliation records a reconciliation outcome.
func (m *Metrics) RecordReconciliation(outcome string) {
	m.ReconciliationsTotal.WithLabelValues(outcome).Inc()
}

// RecordEventConsumed records one message taken off a transport.
func (m *Metrics) RecordEventConsumed(transport, status string) {
	m.EventsConsumedTotal.WithLabelValues(transport, status).Inc()
}

// RecordEventHandled records how long an event handler ran.
func (m *Metrics) RecordEventHandled(event string, duration time.Duration) {
	m.EventHandlerDuration.WithLabelValues(event).Observe(duration.Seconds())
}

// SetBreakerState sets the actor query breaker state gauge.
func (m *Metrics) SetBreakerState(state int) {
	m.ActorQueryBreakerState.Set(float64(state))
}

// statusCodeToString converts an HTTP status code to a string category.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
