package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts requests and observes their duration.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client collectors on reg. Collectors already registered
// by another client on the same registerer are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weaviate",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weaviate",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	err := registerOrReuse(reg, &metrics.requests)
	if err != nil {
		return nil, err
	}

	err = registerOrReuse(reg, &metrics.duration)
	if err != nil {
		return nil, err
	}

	return metrics, nil
}

// Requests exposes the request counter.
func (m *Metrics) Requests() *prometheus.CounterVec {
	return m.requests
}

func (m *Metrics) observe(method, code string, duration time.Duration) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(method, code).Inc()
	m.duration.WithLabelValues(method).Observe(duration.Seconds())
}

func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, collector *T) error {
	err := reg.Register(*collector)
	if err == nil {
		return nil
	}

	var already prometheus.AlreadyRegisteredError
	if !errors.As(err, &already) {
		return fmt.Errorf("registering metric: %w", err)
	}

	existing, ok := already.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("metric already registered with incompatible type %T: %w", already.ExistingCollector, err)
	}

	*collector = existing

	return nil
}
