package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sermonchat"

// Chat request outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeInvalid       = "invalid"
	OutcomeNotConfigured = "not_configured"
	OutcomeRemoteError   = "remote_error"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	ChatRequests       *prometheus.CounterVec
	CompletionDuration prometheus.Histogram
	SermonWrites       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by outcome.",
		}, []string{"outcome"}),
		CompletionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Latency of remote completion calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}),
		SermonWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sermon_writes_total",
			Help:      "Sermon store writes by operation and outcome.",
		}, []string{"op", "outcome"}),
	}
	m.registry.MustRegister(
		m.ChatRequests,
		m.CompletionDuration,
		m.SermonWrites,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCompletion records how long a completion call took.
func (m *Metrics) ObserveCompletion(start time.Time) {
	if m == nil {
		return
	}
	m.CompletionDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) CountChat(outcome string) {
	if m == nil {
		return
	}
	m.ChatRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CountSermonWrite(op string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = "error"
	}
	m.SermonWrites.WithLabelValues(op, outcome).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
