package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP client adapter
	ClientRequests *prometheus.CounterVec
	ClientLatency  *prometheus.HistogramVec
	StaleResponses *prometheus.CounterVec

	// Mock backend
	ServerRequests *prometheus.CounterVec
	ServerLatency  *prometheus.HistogramVec
	ServerErrors   *prometheus.CounterVec
}

// New creates the metric collectors without registering them. Call Register
// with the registry that should expose them.
func New(namespace string) *Metrics {
	return &Metrics{
		ClientRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of backend requests issued by the console",
		}, []string{"resource", "method", "status"}),
		ClientLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend requests issued by the console",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"resource", "method"}),
		StaleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "stale_responses_total",
			Help:      "List responses discarded because a newer fetch was issued",
		}, []string{"resource"}),

		ServerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		ServerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
		}, []string{"method", "path", "status"}),
		ServerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "errors_total",
			Help:      "Total number of HTTP errors",
		}, []string{"method", "path", "type"}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ClientRequests,
		m.ClientLatency,
		m.StaleResponses,
		m.ServerRequests,
		m.ServerLatency,
		m.ServerErrors,
	}
}
