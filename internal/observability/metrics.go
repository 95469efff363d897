// Package observability holds the Prometheus collectors shared by the store
// transport, the location cache and the /metrics endpoint.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so that tests can build as many
// collectors as they like without duplicate-registration panics.
type Collector struct {
	registry *prometheus.Registry

	StoreRequests *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
	BreakerState  prometheus.Gauge
	Refreshes     *prometheus.CounterVec
	CachedRecords prometheus.Gauge
}

// NewCollector creates and registers every metric under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		StoreRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_requests_total",
				Help:      "Requests sent to the location store, by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_request_duration_seconds",
				Help:      "Latency of location store requests in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_breaker_state",
			Help:      "Circuit breaker state for the store transport (0 closed, 1 half-open, 2 open).",
		}),
		Refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_refreshes_total",
				Help:      "Location cache refreshes, by result.",
			},
			[]string{"result"},
		),
		CachedRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_records",
			Help:      "Number of location records in the current cache snapshot.",
		}),
	}

	registry.MustRegister(
		c.StoreRequests,
		c.StoreDuration,
		c.BreakerState,
		c.Refreshes,
		c.CachedRecords,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveStoreRequest records one round trip. A nil Collector is a no-op.
func (c *Collector) ObserveStoreRequest(method, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.StoreRequests.WithLabelValues(method, outcome).Inc()
	c.StoreDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// SetBreakerState records the breaker state as a numeric gauge.
func (c *Collector) SetBreakerState(state int) {
	if c == nil {
		return
	}
	c.BreakerState.Set(float64(state))
}

// ObserveRefresh records a cache refresh. records is ignored on failure.
func (c *Collector) ObserveRefresh(records int, err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.Refreshes.WithLabelValues("error").Inc()
		return
	}
	c.Refreshes.WithLabelValues("ok").Inc()
	c.CachedRecords.Set(float64(records))
}
