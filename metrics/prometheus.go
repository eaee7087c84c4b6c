package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the recorder.
type Metrics struct {
	// Ingestion
	SamplesReceived  *prometheus.CounterVec
	SamplesDropped   *prometheus.CounterVec
	SamplesDiscarded *prometheus.CounterVec
	RingFill         *prometheus.GaugeVec

	// Sessions
	SessionsStarted prometheus.Counter
	ActiveSession   prometheus.Gauge

	// Export
	MergedRows     prometheus.Histogram
	MergeDuration  prometheus.Histogram
	Exports        prometheus.Counter
	ExportFailures prometheus.Counter
}

// New creates all metrics and registers them with reg. Passing nil uses a
// fresh private registry, which keeps tests independent.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		SamplesReceived: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sensor_samples_received_total",
			Help: "Samples accepted into the session, by stream",
		}, []string{"stream"}),
		SamplesDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sensor_samples_dropped_total",
			Help: "Samples dropped because the producer queue was full, by stream",
		}, []string{"stream"}),
		SamplesDiscarded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sensor_samples_discarded_total",
			Help: "Samples rejected at ingestion for non-finite values, by stream",
		}, []string{"stream"}),
		RingFill: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sensor_ring_buffer_size",
			Help: "Current number of samples held in the live ring buffer, by stream",
		}, []string{"stream"}),

		SessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "sensor_sessions_started_total",
			Help: "Total number of measurement sessions started",
		}),
		ActiveSession: f.NewGauge(prometheus.GaugeOpts{
			Name: "sensor_session_active",
			Help: "1 while acquisition is running",
		}),

		MergedRows: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sensor_merged_rows",
			Help:    "Rows produced per merge",
			Buckets: prometheus.ExponentialBuckets(100, 4, 8), // 100 to ~1.6M
		}),
		MergeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sensor_merge_duration_seconds",
			Help:    "Time spent coalescing and merging a session",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}),
		Exports: f.NewCounter(prometheus.CounterOpts{
			Name: "sensor_exports_total",
			Help: "Total number of successful exports",
		}),
		ExportFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "sensor_export_failures_total",
			Help: "Total number of failed exports",
		}),
	}
}

// RecordReceived counts one accepted sample.
func (m *Metrics) RecordReceived(stream string) {
	m.SamplesReceived.WithLabelValues(stream).Inc()
}

// RecordDropped adds n producer-side drops.
func (m *Metrics) RecordDropped(stream string, n uint64) {
	m.SamplesDropped.WithLabelValues(stream).Add(float64(n))
}

// RecordDiscarded counts one invalid sample.
func (m *Metrics) RecordDiscarded(stream string) {
	m.SamplesDiscarded.WithLabelValues(stream).Inc()
}

// SetRingFill sets the live buffer size for a stream.
func (m *Metrics) SetRingFill(stream string, size int) {
	m.RingFill.WithLabelValues(stream).Set(float64(size))
}

// SetSessionActive toggles the active session gauge.
func (m *Metrics) SetSessionActive(active bool) {
	if active {
		m.ActiveSession.Set(1)
		return
	}
	m.ActiveSession.Set(0)
}

// RecordMerge records the outcome of one merge.
func (m *Metrics) RecordMerge(rows int, durationSeconds float64) {
	m.MergedRows.Observe(float64(rows))
	m.MergeDuration.Observe(durationSeconds)
}

// RecordExport records an export attempt.
func (m *Metrics) RecordExport(err error) {
	if err != nil {
		m.ExportFailures.Inc()
		return
	}
	m.Exports.Inc()
}
