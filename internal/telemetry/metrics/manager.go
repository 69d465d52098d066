package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Commit outcomes used as the CounterRoutineCommits label.
const (
	CommitOutcomeOK      = "ok"
	CommitOutcomeInvalid = "invalid"
	CommitOutcomeFailed  = "failed"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterHandleRequestPanic  prometheus.Counter
	CounterRateLimitedRequests prometheus.Counter
	CounterRoutineCommits      *prometheus.CounterVec
	CounterLoggedExercises     prometheus.Counter
	CounterRegistrations       prometheus.Counter

	// gauges
	GaugeRequests   prometheus.Gauge
	GaugeLifeSignal prometheus.Gauge

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	m, _ := NewTestManagerAndRegistry()
	return m
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("backend", "test_server", reg), reg
}

// builder stamps namespace and subsystem on every metric it registers.
type builder struct {
	factory   promauto.Factory
	namespace string
	subsystem string
}

func (b builder) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: b.namespace, Subsystem: b.subsystem, Name: name, Help: help}
}

func (b builder) counter(name, help string) prometheus.Counter {
	return b.factory.NewCounter(b.counterOpts(name, help))
}

func (b builder) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return b.factory.NewCounterVec(b.counterOpts(name, help), labels)
}

func (b builder) gauge(name, help string) prometheus.Gauge {
	return b.factory.NewGauge(prometheus.GaugeOpts{Namespace: b.namespace, Subsystem: b.subsystem, Name: name, Help: help})
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	b := builder{
		factory:   promauto.With(reg),
		namespace: namespace,
		subsystem: subsystem,
	}

	return &Manager{
		CounterRequests:            b.counterVec("request", "Incoming requests by method and status", "method", "status"),
		CounterHandleRequestPanic:  b.counter("handle_request_panic", "Handler panics recovered"),
		CounterRateLimitedRequests: b.counter("rate_limited_requests", "Requests rejected by the rate limiter"),
		CounterRoutineCommits:      b.counterVec("routine_commits", "Routine edit commits by outcome", "outcome"),
		CounterLoggedExercises:     b.counter("logged_exercises", "Exercises logged"),
		CounterRegistrations:       b.counter("registrations", "Accounts created, active or not"),

		GaugeRequests:   b.gauge("current_requests", "Open client connections"),
		GaugeLifeSignal: b.gauge("life_signal", "1 while the service is serving"),

		HistogramRequestDuration: b.factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request handling time in seconds",
			Buckets:   prometheus.ExponentialBucketsRange(0.005, 10, 12),
		}, []string{"route", "method", "status_code"}),
	}
}
