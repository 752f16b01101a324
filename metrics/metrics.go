// Package metrics records run metrics on a private Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sartorproj/gorates/stats"
	"github.com/sartorproj/gorates/timeseries"
)

const namespace = "gorates"

// Recorder collects metrics for one analysis run.
type Recorder struct {
	registry *prometheus.Registry

	rowsLoaded   *prometheus.CounterVec
	rowsSkipped  *prometheus.CounterVec
	observations *prometheus.GaugeVec
	lag1         *prometheus.GaugeVec
	correlations *prometheus.CounterVec
	coefficient  *prometheus.GaugeVec
	pValue       *prometheus.GaugeVec
	alignedN     *prometheus.GaugeVec
	lastRun      prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Source rows kept while loading a series.",
		}, []string{"series"}),
		rowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Source rows dropped because the date or value could not be parsed.",
		}, []string{"series"}),
		observations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "series_observations",
			Help:      "Observations in a loaded series.",
		}, []string{"series"}),
		lag1: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "series_lag1_autocorrelation",
			Help:      "Lag-1 sample autocorrelation of a loaded series.",
		}, []string{"series"}),
		correlations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "correlations_total",
			Help:      "Pairwise correlations attempted, by outcome.",
		}, []string{"result"}),
		coefficient: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "correlation_coefficient",
			Help:      "Pearson correlation coefficient between two series.",
		}, []string{"label1", "label2"}),
		pValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "correlation_p_value",
			Help:      "Two-sided p-value of the correlation.",
		}, []string{"label1", "label2"}),
		alignedN: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "correlation_aligned_observations",
			Help:      "Shared dates used for the correlation.",
		}, []string{"label1", "label2"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	r.registry.MustRegister(
		r.rowsLoaded,
		r.rowsSkipped,
		r.observations,
		r.lag1,
		r.correlations,
		r.coefficient,
		r.pValue,
		r.alignedN,
		r.lastRun,
	)
	return r
}

// Registry returns the registry holding the run metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// SeriesLoaded records the outcome of loading one series.
func (r *Recorder) SeriesLoaded(label string, st timeseries.LoadStats) {
	r.rowsLoaded.WithLabelValues(label).Add(float64(st.Loaded))
	r.rowsSkipped.WithLabelValues(label).Add(float64(st.Skipped))
	r.observations.WithLabelValues(label).Set(float64(st.Loaded))
}

// Autocorrelation records the lag-1 autocorrelation of a series.
func (r *Recorder) Autocorrelation(res *stats.ACFResult) {
	r.lag1.WithLabelValues(res.Label).Set(res.Lag1())
}

// Correlated records a successful correlation.
func (r *Recorder) Correlated(res stats.CorrelationResult) {
	r.correlations.WithLabelValues("ok").Inc()
	r.coefficient.WithLabelValues(res.LabelA, res.LabelB).Set(res.Coefficient)
	r.pValue.WithLabelValues(res.LabelA, res.LabelB).Set(res.PValue)
	r.alignedN.WithLabelValues(res.LabelA, res.LabelB).Set(float64(res.N))
}

// CorrelationFailed records a pair that could not be correlated.
func (r *Recorder) CorrelationFailed() {
	r.correlations.WithLabelValues("error").Inc()
}

// Finished stamps the end of the run.
func (r *Recorder) Finished() {
	r.lastRun.SetToCurrentTime()
}

// WriteTextfile writes the metrics in the text exposition format, for the
// node exporter textfile collector.
func (r *Recorder) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, r.registry)
}
