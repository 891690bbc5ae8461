// Package prom exports classify.Metrics signals as Prometheus metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mkorolik/typematch/classify"
)

// Adapter implements classify.Metrics on top of Prometheus counters and
// gauges. Safe for concurrent use; all Prometheus metric types are
// goroutine-safe.
type Adapter struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	growths prometheus.Counter
	swept   prometheus.Counter
	entries prometheus.Gauge
	buckets prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Classifications answered by a memoized entry",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Classifications that ran the ordered subtype scan",
			ConstLabels: constLabels,
		}),
		growths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "growths_total",
			Help:        "Table doublings",
			ConstLabels: constLabels,
		}),
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "stale_swept_total",
			Help:        "Entries dropped during growth because their type handle expired",
			ConstLabels: constLabels,
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Memoized concrete types",
			ConstLabels: constLabels,
		}),
		buckets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_buckets",
			Help:        "Table slot count",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.growths, a.swept, a.entries, a.buckets)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Grow counts a table doubling and records the new slot count.
func (a *Adapter) Grow(buckets int) {
	a.growths.Inc()
	a.buckets.Set(float64(buckets))
}

// SweepStale counts entries dropped by the growth-time staleness sweep.
func (a *Adapter) SweepStale(dropped int) { a.swept.Add(float64(dropped)) }

// Size updates the entry and bucket gauges.
func (a *Adapter) Size(entries, buckets int) {
	a.entries.Set(float64(entries))
	a.buckets.Set(float64(buckets))
}

// Compile-time check: ensure Adapter implements classify.Metrics.
var _ classify.Metrics = (*Adapter)(nil)
