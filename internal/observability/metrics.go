package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL.
type Metrics struct {
	MunicipalitiesProcessed prometheus.Counter
	MunicipalitiesFailed    prometheus.Counter
	ResultRowsUpserted      prometheus.Counter
	ParametersDropped       prometheus.Counter
	BatchRunning            prometheus.Gauge

	SearchDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.MunicipalitiesProcessed,
		m.MunicipalitiesFailed,
		m.ResultRowsUpserted,
		m.ParametersDropped,
		m.BatchRunning,
		m.SearchDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MunicipalitiesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orobnat_etl",
			Name:      "municipalities_processed_total",
			Help:      "Municipalities attempted, successes and failures included.",
		}),
		MunicipalitiesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orobnat_etl",
			Name:      "municipalities_failed_total",
			Help:      "Municipalities whose pipeline run ended in an error.",
		}),
		ResultRowsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orobnat_etl",
			Name:      "result_rows_upserted_total",
			Help:      "Analysis result rows written to the store.",
		}),
		ParametersDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orobnat_etl",
			Name:      "parameters_dropped_total",
			Help:      "Report parameters without an allow-list match, not persisted.",
		}),
		BatchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orobnat_etl",
			Name:      "batch_running",
			Help:      "1 while a batch run is in progress, 0 otherwise.",
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "orobnat_etl",
			Name:      "search_duration_seconds",
			Help:      "Duration of the registry search POST per municipality.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		}),
	}
}
