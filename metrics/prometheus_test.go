package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordReceived("accelerometer")
	m.RecordReceived("accelerometer")
	m.RecordDropped("gyroscope", 3)
	m.RecordDiscarded("loudness")
	m.SetRingFill("loudness", 42)
	m.RecordExport(nil)
	m.RecordExport(errors.New("disk full"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SamplesReceived.WithLabelValues("accelerometer")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SamplesDropped.WithLabelValues("gyroscope")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SamplesDiscarded.WithLabelValues("loudness")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.RingFill.WithLabelValues("loudness")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exports))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportFailures))

	n, err := testutil.GatherAndCount(reg, "sensor_samples_received_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		New(nil)
		New(nil)
	})
}
