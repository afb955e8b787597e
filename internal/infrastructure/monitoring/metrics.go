package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "remote_browser"

// Metrics holds the Prometheus collectors for sessions and the linkcast
// server.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionsStarted prometheus.Counter
	SessionsActive  prometheus.Gauge
	SessionOutcomes *prometheus.CounterVec
	SessionDuration prometheus.Histogram
	ForcedKills     prometheus.Counter
	SessionsBusy    prometheus.Counter

	// Remote metrics
	CodesDispatched *prometheus.CounterVec

	// Window metrics
	WindowActivations    prometheus.Counter
	WindowSearchFailures prometheus.Counter
}

// NewMetrics registers the collectors on reg. A nil reg uses the default
// Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of linkcast HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Linkcast HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of browser sessions whose browser was spawned",
		}),
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of browser sessions currently running",
		}),
		SessionOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_outcomes_total",
				Help:      "Browser sessions by the reason they ended",
			},
			[]string{"outcome"},
		),
		SessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Browser session duration in seconds",
			Buckets:   []float64{1, 10, 30, 60, 300, 900, 1800, 3600, 7200},
		}),
		ForcedKills: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forced_kills_total",
			Help:      "Browsers that had to be killed after the grace period",
		}),
		SessionsBusy: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "launches_rejected_total",
			Help:      "Launch requests rejected because a session was running",
		}),

		CodesDispatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_codes_total",
				Help:      "Remote codes dispatched by command",
			},
			[]string{"command"},
		),

		WindowActivations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "window_activations_total",
			Help:      "Browser windows raised",
		}),
		WindowSearchFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "window_search_failures_total",
			Help:      "Window searches that failed",
		}),
	}
}

// RecordHTTPRequest records one linkcast request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// SessionStarted records a spawned browser.
func (m *Metrics) SessionStarted() {
	m.SessionsStarted.Inc()
	m.SessionsActive.Inc()
}

// SessionEnded records how and after how long a session ended.
func (m *Metrics) SessionEnded(outcome string, duration time.Duration) {
	m.SessionsActive.Dec()
	m.SessionOutcomes.WithLabelValues(outcome).Inc()
	m.SessionDuration.Observe(duration.Seconds())
}

// CodeDispatched counts one remote code.
func (m *Metrics) CodeDispatched(command string) {
	m.CodesDispatched.WithLabelValues(command).Inc()
}

// ForcedKill counts a browser killed at the end of its grace period.
func (m *Metrics) ForcedKill() { m.ForcedKills.Inc() }

// LaunchRejected counts a launch refused while another session ran.
func (m *Metrics) LaunchRejected() { m.SessionsBusy.Inc() }

// WindowActivated counts a raised window.
func (m *Metrics) WindowActivated() { m.WindowActivations.Inc() }

// WindowSearchFailed counts a failed window search.
func (m *Metrics) WindowSearchFailed() { m.WindowSearchFailures.Inc() }
