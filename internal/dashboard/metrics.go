package dashboard

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records per-source fetch timings and load outcomes. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	fetchDuration *prometheus.HistogramVec
	fetchFailures *prometheus.CounterVec
	loads         *prometheus.CounterVec
}

// NewMetrics registers the loader metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "healthmap",
			Subsystem: "loader",
			Name:      "fetch_duration_seconds",
			Help:      "Backend read duration by source.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		fetchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthmap",
			Subsystem: "loader",
			Name:      "fetch_failures_total",
			Help:      "Failed backend reads by source.",
		}, []string{"source"}),
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthmap",
			Subsystem: "loader",
			Name:      "loads_total",
			Help:      "Loads by outcome (ok, degraded, failed).",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeFetch(src Source, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(string(src)).Observe(d.Seconds())
	if err != nil {
		m.fetchFailures.WithLabelValues(string(src)).Inc()
	}
}

func (m *Metrics) observeLoad(outcome string) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(outcome).Inc()
}
