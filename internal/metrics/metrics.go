// Package metrics exposes Prometheus counters for sync runs and dispatches.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"codeberg.org/snonux/foodsync/internal/reconcile"
)

// Metrics holds the collectors registered on one registry.
type Metrics struct {
	Registry *prometheus.Registry

	runsTotal           *prometheus.CounterVec
	runDuration         prometheus.Histogram
	recordsTotal        *prometheus.CounterVec
	translationCalls    prometheus.Counter
	translationFailures prometheus.Counter
	databaseSize        prometheus.Gauge
	lastSuccess         prometheus.Gauge
	dispatchesTotal     *prometheus.CounterVec
}

// New creates a registry with the process and Go collectors plus the
// foodsync collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "foodsync_runs_total",
			Help: "Sync runs by outcome",
		}, []string{"outcome"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "foodsync_run_duration_seconds",
			Help:    "Duration of sync runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		}),
		recordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "foodsync_records_total",
			Help: "Records produced by sync runs, by how they were produced",
		}, []string{"kind"}),
		translationCalls: factory.NewCounter(prometheus.CounterOpts{
			Name: "foodsync_translation_calls_total",
			Help: "Calls made to the translation service",
		}),
		translationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "foodsync_translation_failures_total",
			Help: "Translation calls that failed and kept the original name",
		}),
		databaseSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "foodsync_database_records",
			Help: "Records in the food database after the last successful run",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "foodsync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
		dispatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "foodsync_dispatches_total",
			Help: "GitHub dispatch requests by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveRun records one sync run. sum is ignored when err is set. A dry run
// counts its translation calls but leaves the database gauges alone, since
// nothing was written.
func (m *Metrics) ObserveRun(sum reconcile.Summary, elapsed time.Duration, dryRun bool, err error) {
	if m == nil {
		return
	}

	m.runDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.runsTotal.WithLabelValues("error").Inc()
		return
	}

	m.translationCalls.Add(float64(sum.TranslationCalls))
	m.translationFailures.Add(float64(sum.TranslationFailures))
	if dryRun {
		m.runsTotal.WithLabelValues("dry_run").Inc()
		return
	}

	m.runsTotal.WithLabelValues("success").Inc()
	m.recordsTotal.WithLabelValues("reused").Add(float64(sum.Reused))
	m.recordsTotal.WithLabelValues("updated").Add(float64(sum.Updated))
	m.recordsTotal.WithLabelValues("added").Add(float64(sum.Added))
	m.recordsTotal.WithLabelValues("dropped").Add(float64(sum.Dropped))
	m.databaseSize.Set(float64(sum.Total))
	m.lastSuccess.SetToCurrentTime()
}

// ObserveDispatch records one dispatch attempt.
func (m *Metrics) ObserveDispatch(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.dispatchesTotal.WithLabelValues("error").Inc()
		return
	}
	m.dispatchesTotal.WithLabelValues("success").Inc()
}
