package utils

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ─── Sensor-level configs ───────────────────────────────────────────────

type MicrophoneConfig struct {
	Enabled       bool `yaml:"enabled"`
	SampleRate    int  `yaml:"sample_rate"` // Hz
	BatchSize     int  `yaml:"batch_size"`  // samples per delivered batch
	ChannelBuffer int  `yaml:"channel_buffer"`
	RingCapacity  int  `yaml:"ring_capacity"`
}

type MotionConfig struct {
	Enabled       bool `yaml:"enabled"`
	UpdateRateHz  int  `yaml:"update_rate_hz"`
	ChannelBuffer int  `yaml:"channel_buffer"`
	RingCapacity  int  `yaml:"ring_capacity"`
}

type SimulationConfig struct {
	Enabled bool `yaml:"enabled"`
}

// SensorsConfig is the top-level structure for sensors.yaml.
type SensorsConfig struct {
	Sensors struct {
		Microphone    MicrophoneConfig `yaml:"microphone"`
		Accelerometer MotionConfig     `yaml:"accelerometer"`
		Gyroscope     MotionConfig     `yaml:"gyroscope"`
	} `yaml:"sensors"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// ApplyDefaults fills zero values with the rates and ring sizes the recorder
// was tuned for.
func (c *SensorsConfig) ApplyDefaults() {
	mic := &c.Sensors.Microphone
	if mic.SampleRate == 0 {
		mic.SampleRate = 48000
	}
	if mic.BatchSize == 0 {
		mic.BatchSize = 128
	}
	if mic.RingCapacity == 0 {
		mic.RingCapacity = 3000
	}
	for _, m := range []*MotionConfig{&c.Sensors.Accelerometer, &c.Sensors.Gyroscope} {
		if m.UpdateRateHz == 0 {
			m.UpdateRateHz = 100
		}
		if m.RingCapacity == 0 {
			m.RingCapacity = 1000
		}
	}
}

// Validate rejects settings the readers cannot run with.
func (c *SensorsConfig) Validate() error {
	mic := c.Sensors.Microphone
	if mic.SampleRate <= 0 {
		return fmt.Errorf("microphone sample_rate must be positive, got %d", mic.SampleRate)
	}
	if mic.BatchSize <= 0 {
		return fmt.Errorf("microphone batch_size must be positive, got %d", mic.BatchSize)
	}
	if c.Sensors.Accelerometer.UpdateRateHz <= 0 {
		return fmt.Errorf("accelerometer update_rate_hz must be positive, got %d", c.Sensors.Accelerometer.UpdateRateHz)
	}
	if c.Sensors.Gyroscope.UpdateRateHz <= 0 {
		return fmt.Errorf("gyroscope update_rate_hz must be positive, got %d", c.Sensors.Gyroscope.UpdateRateHz)
	}
	return nil
}

// ─── Session configs ────────────────────────────────────────────────────

type TimingConfig struct {
	WaitMs            int `yaml:"wait_ms"`     // delay before the first start
	MaxRunMs          int `yaml:"max_run_ms"`  // total recording budget across pauses
	RefreshIntervalMs int `yaml:"refresh_interval_ms"`
}

type CSVStorageConfig struct {
	BufferSizeKB int  `yaml:"buffer_size_kb"`
	WriteHeader  bool `yaml:"write_header"`
}

type StorageConfig struct {
	BaseDir       string           `yaml:"base_dir"`
	SessionPrefix string           `yaml:"session_prefix"`
	Overwrite     bool             `yaml:"overwrite"`
	ExportMode    string           `yaml:"export_mode"` // "interpolate" or "none"
	CSV           CSVStorageConfig `yaml:"csv"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables /metrics and /live
}

// SessionConfig is the top-level structure for session.yaml.
type SessionConfig struct {
	Timing  TimingConfig  `yaml:"timing"`
	Storage StorageConfig `yaml:"storage"`
	HTTP    HTTPConfig    `yaml:"http"`
}

func (c *SessionConfig) ApplyDefaults() {
	if c.Timing.WaitMs == 0 {
		c.Timing.WaitMs = 1000
	}
	if c.Timing.MaxRunMs == 0 {
		c.Timing.MaxRunMs = 60_000
	}
	if c.Timing.RefreshIntervalMs == 0 {
		c.Timing.RefreshIntervalMs = 1000
	}
	if c.Storage.BaseDir == "" {
		c.Storage.BaseDir = "data"
	}
	if c.Storage.SessionPrefix == "" {
		c.Storage.SessionPrefix = "Time_Data"
	}
	if c.Storage.ExportMode == "" {
		c.Storage.ExportMode = "interpolate"
	}
}

func (c *SessionConfig) Validate() error {
	if c.Timing.WaitMs < 0 || c.Timing.MaxRunMs < 0 || c.Timing.RefreshIntervalMs < 0 {
		return errors.New("timing values must not be negative")
	}
	switch c.Storage.ExportMode {
	case "interpolate", "none":
	default:
		return fmt.Errorf("unknown export_mode %q", c.Storage.ExportMode)
	}
	return nil
}

// ─── Loaders ────────────────────────────────────────────────────────────

// LoadSensorsConfig reads and parses sensors.yaml.
func LoadSensorsConfig(path string) (*SensorsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sensors config: %w", err)
	}
	var cfg SensorsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse sensors config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sensors config: %w", err)
	}
	return &cfg, nil
}

// LoadSessionConfig reads and parses session.yaml.
func LoadSessionConfig(path string) (*SessionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session config: %w", err)
	}
	var cfg SessionConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse session config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	return &cfg, nil
}
