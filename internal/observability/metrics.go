package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the tracker's Prometheus instruments. A nil *Metrics is
// valid and records nothing, which keeps tests and library callers free
// of registry plumbing.
type Metrics struct {
	LastProcessedBlock prometheus.Gauge
	TrackedPools       prometheus.Gauge
	ErrorsTotal        *prometheus.CounterVec
	LaunchesDiscovered prometheus.Counter
	SwapsIngested      prometheus.Counter
	TickDuration       prometheus.Histogram
}

// NewMetrics registers all instruments against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		LastProcessedBlock: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "launchlens",
			Name:      "last_processed_block",
			Help:      "Highest block number fully processed by the tracker.",
		}),
		TrackedPools: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "launchlens",
			Name:      "tracked_pools",
			Help:      "Number of pools with open swap histories.",
		}),
		ErrorsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchlens",
			Name:      "errors_total",
			Help:      "Errors encountered, labeled by type (rpc, decode, metadata, persist).",
		}, []string{"type"}),
		LaunchesDiscovered: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "launchlens",
			Name:      "launches_discovered_total",
			Help:      "Launches committed to the state store.",
		}),
		SwapsIngested: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "launchlens",
			Name:      "swaps_ingested_total",
			Help:      "Swap events appended to pool histories.",
		}),
		TickDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "launchlens",
			Name:      "tick_duration_seconds",
			Help:      "Duration of one full poll tick.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncError(kind string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetLastProcessedBlock(block uint64) {
	if m == nil {
		return
	}
	m.LastProcessedBlock.Set(float64(block))
}

func (m *Metrics) SetTrackedPools(count int) {
	if m == nil {
		return
	}
	m.TrackedPools.Set(float64(count))
}

func (m *Metrics) AddLaunches(count int) {
	if m == nil || count == 0 {
		return
	}
	m.LaunchesDiscovered.Add(float64(count))
}

func (m *Metrics) AddSwaps(count int) {
	if m == nil || count == 0 {
		return
	}
	m.SwapsIngested.Add(float64(count))
}

func (m *Metrics) ObserveTick(seconds float64) {
	if m == nil {
		return
	}
	m.TickDuration.Observe(seconds)
}
