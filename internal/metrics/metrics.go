// Package metrics provides Prometheus telemetry for the composition engine:
// dispatch throughput and latency, the size of the dynamic reducer set, and
// mount/process lifecycle counters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the engine's Prometheus collectors on a private registry.
type Collector struct {
	registry *prometheus.Registry

	dispatchTotal   prometheus.Counter
	dispatchLatency prometheus.Histogram

	registeredReducers prometheus.Gauge

	mountsTotal        *prometheus.CounterVec
	processStartsTotal *prometheus.CounterVec
	processSkipsTotal  prometheus.Counter
}

// NewCollector creates a collector. Namespace defaults to "subapp".
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "subapp"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.dispatchTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "dispatch_total",
		Help:      "Total actions dispatched through the store",
	})

	c.dispatchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "dispatch_duration_seconds",
		Help:      "Time for the composed reducer set to apply one action",
		Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10),
	})

	c.registeredReducers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "registered_reducers",
		Help:      "Number of reducers added after store creation",
	})

	c.mountsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mount",
		Name:      "activations_total",
		Help:      "Mount activations per sub-app key",
	}, []string{"key"})

	c.processStartsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "process",
		Name:      "starts_total",
		Help:      "Background process starts per sub-app key",
	}, []string{"key"})

	c.processSkipsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "process",
		Name:      "skips_total",
		Help:      "Process starts skipped because no runtime was configured",
	})

	c.registry.MustRegister(
		c.dispatchTotal,
		c.dispatchLatency,
		c.registeredReducers,
		c.mountsTotal,
		c.processStartsTotal,
		c.processSkipsTotal,
	)
	return c
}

// Registry exposes the private registry for HTTP export.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ObserveDispatch records one dispatch and how long its reduction took.
func (c *Collector) ObserveDispatch(d time.Duration) {
	c.dispatchTotal.Inc()
	c.dispatchLatency.Observe(d.Seconds())
}

// SetRegisteredReducers records the current dynamic reducer count.
func (c *Collector) SetRegisteredReducers(n int) {
	c.registeredReducers.Set(float64(n))
}

// RecordMount records a mount activation for a key.
func (c *Collector) RecordMount(key string) {
	c.mountsTotal.WithLabelValues(key).Inc()
}

// RecordProcessStart records a background process start for a key.
func (c *Collector) RecordProcessStart(key string) {
	c.processStartsTotal.WithLabelValues(key).Inc()
}

// RecordProcessSkip records a process start skipped for lack of a runtime.
func (c *Collector) RecordProcessSkip() {
	c.processSkipsTotal.Inc()
}
