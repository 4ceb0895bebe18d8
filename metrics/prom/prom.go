// Package prom exports cache.Metrics as Prometheus collectors.
package prom

import (
	"github.com/IvanBrykalov/memstore/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evicts    prometheus.Counter
	rejects   *prometheus.CounterVec
	sizeEnt   prometheus.Gauge
	sizeBytes prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		}
	}
	a := &Adapter{
		hits:   prometheus.NewCounter(prometheus.CounterOpts(opts("hits_total", "Cache hits"))),
		misses: prometheus.NewCounter(prometheus.CounterOpts(opts("misses_total", "Cache misses"))),
		evicts: prometheus.NewCounter(prometheus.CounterOpts(opts("evictions_total", "Entries evicted to satisfy the byte budget"))),
		rejects: prometheus.NewCounterVec(
			prometheus.CounterOpts(opts("rejections_total", "Operations that returned false, by reason")),
			[]string{"reason"},
		),
		sizeEnt:   prometheus.NewGauge(prometheus.GaugeOpts(opts("size_entries", "Number of resident entries"))),
		sizeBytes: prometheus.NewGauge(prometheus.GaugeOpts(opts("size_bytes", "Bytes charged by resident entries"))),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.rejects, a.sizeEnt, a.sizeBytes)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evicts.Inc() }

// Reject increments the rejection counter with a reason label.
func (a *Adapter) Reject(r cache.RejectReason) {
	a.rejects.WithLabelValues(r.String()).Inc()
}

// Resize applies entry/byte deltas to the size gauges. Shards report deltas,
// so the gauges hold cache-wide totals.
func (a *Adapter) Resize(dEntries int, dBytes int64) {
	a.sizeEnt.Add(float64(dEntries))
	a.sizeBytes.Add(float64(dBytes))
}

var _ cache.Metrics = (*Adapter)(nil)
