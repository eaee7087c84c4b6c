package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadSensorsConfig_Defaults(t *testing.T) {
	p := writeFile(t, "sensors.yaml", `
sensors:
  microphone:
    enabled: true
  accelerometer:
    enabled: true
    update_rate_hz: 50
  gyroscope:
    enabled: false
simulation:
  enabled: true
`)
	cfg, err := LoadSensorsConfig(p)
	require.NoError(t, err)

	assert.True(t, cfg.Sensors.Microphone.Enabled)
	assert.Equal(t, 48000, cfg.Sensors.Microphone.SampleRate)
	assert.Equal(t, 128, cfg.Sensors.Microphone.BatchSize)
	assert.Equal(t, 3000, cfg.Sensors.Microphone.RingCapacity)
	assert.Equal(t, 50, cfg.Sensors.Accelerometer.UpdateRateHz)
	assert.Equal(t, 1000, cfg.Sensors.Accelerometer.RingCapacity)
	assert.Equal(t, 100, cfg.Sensors.Gyroscope.UpdateRateHz)
	assert.False(t, cfg.Sensors.Gyroscope.Enabled)
	assert.True(t, cfg.Simulation.Enabled)
}

func TestLoadSensorsConfig_Invalid(t *testing.T) {
	p := writeFile(t, "sensors.yaml", "sensors:\n  microphone:\n    sample_rate: -1\n")
	_, err := LoadSensorsConfig(p)
	assert.ErrorContains(t, err, "sample_rate")

	_, err = LoadSensorsConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	p = writeFile(t, "broken.yaml", "sensors: [")
	_, err = LoadSensorsConfig(p)
	assert.ErrorContains(t, err, "parse sensors config")
}

func TestLoadSessionConfig(t *testing.T) {
	p := writeFile(t, "session.yaml", `
timing:
  wait_ms: 250
  max_run_ms: 5000
storage:
  base_dir: out
  export_mode: none
http:
  addr: ":9100"
`)
	cfg, err := LoadSessionConfig(p)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Timing.WaitMs)
	assert.Equal(t, 5000, cfg.Timing.MaxRunMs)
	assert.Equal(t, 1000, cfg.Timing.RefreshIntervalMs)
	assert.Equal(t, "out", cfg.Storage.BaseDir)
	assert.Equal(t, "Time_Data", cfg.Storage.SessionPrefix)
	assert.Equal(t, "none", cfg.Storage.ExportMode)
	assert.Equal(t, ":9100", cfg.HTTP.Addr)
}

func TestLoadSessionConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative wait", "timing:\n  wait_ms: -5\n"},
		{"unknown mode", "storage:\n  export_mode: cubic\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSessionConfig(writeFile(t, "session.yaml", tt.body))
			assert.Error(t, err)
		})
	}
}

func TestSessionName(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 2, 0, time.Local)
	assert.Equal(t, "Time_Data_2024-03-07_09-05-02", SessionName("Time_Data", ts))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLogLevel("debug"))
	assert.Equal(t, WARN, ParseLogLevel("WARN"))
	assert.Equal(t, INFO, ParseLogLevel("nonsense"))
	assert.Equal(t, "ERROR", ERROR.String())
}

func TestLoggerStructuredAccess(t *testing.T) {
	z := L().Zap()
	require.NotNil(t, z)
	z.Infow("structured", "key", 1)
	assert.Same(t, z, L().Zap())
}
