package controller

import (
	"context"
	"fmt"

	"sensor-recorder/models"
	"sensor-recorder/services/ingest"
	"sensor-recorder/utils"
)

// Sensor is the resource handle every reader exposes.
type Sensor interface {
	Name() string
	Start(ctx context.Context) error
	Stop()
	Dispose()
	Stats() (produced, dropped uint64)
}

// SensorsController owns the lifecycle of every sensor reader goroutine.
// It exposes typed output channels that the acquisition loop consumes.
// Teardown always runs audio, then accelerometer, then gyroscope.
type SensorsController struct {
	audio *ingest.AudioReader
	accel *ingest.MotionReader
	gyro  *ingest.MotionReader

	AudioCh <-chan models.LoudnessBatch
	AccelCh <-chan models.MotionSample
	GyroCh  <-chan models.MotionSample
}

// NewSensorsController creates reader instances for every enabled sensor.
func NewSensorsController(cfg *utils.SensorsConfig) *SensorsController {
	sc := &SensorsController{}
	sim := cfg.Simulation.Enabled

	if cfg.Sensors.Microphone.Enabled {
		sc.audio = ingest.NewAudioReader(cfg.Sensors.Microphone, sim)
		sc.AudioCh = sc.audio.Out
	}
	if cfg.Sensors.Accelerometer.Enabled {
		sc.accel = ingest.NewMotionReader(models.StreamAccelerometer, cfg.Sensors.Accelerometer, sim)
		sc.AccelCh = sc.accel.Out
	}
	if cfg.Sensors.Gyroscope.Enabled {
		sc.gyro = ingest.NewMotionReader(models.StreamGyroscope, cfg.Sensors.Gyroscope, sim)
		sc.GyroCh = sc.gyro.Out
	}
	return sc
}

// Audio returns the microphone reader, or nil when disabled.
func (sc *SensorsController) Audio() *ingest.AudioReader { return sc.audio }

// Accelerometer returns the accelerometer reader, or nil when disabled.
func (sc *SensorsController) Accelerometer() *ingest.MotionReader { return sc.accel }

// Gyroscope returns the gyroscope reader, or nil when disabled.
func (sc *SensorsController) Gyroscope() *ingest.MotionReader { return sc.gyro }

// sensors returns the enabled readers in teardown order.
func (sc *SensorsController) sensors() []Sensor {
	var out []Sensor
	if sc.audio != nil {
		out = append(out, sc.audio)
	}
	if sc.accel != nil {
		out = append(out, sc.accel)
	}
	if sc.gyro != nil {
		out = append(out, sc.gyro)
	}
	return out
}

// Start launches all enabled readers. If one fails, those already started
// are stopped again.
func (sc *SensorsController) Start(ctx context.Context) error {
	started := make([]Sensor, 0, 3)
	for _, s := range sc.sensors() {
		if err := s.Start(ctx); err != nil {
			for _, st := range started {
				st.Stop()
			}
			return fmt.Errorf("start %s reader: %w", s.Name(), err)
		}
		started = append(started, s)
	}
	utils.L().Info("sensors controller: %d readers launched", len(started))
	return nil
}

// Stop pauses every reader. Queues stay open for a later Start.
func (sc *SensorsController) Stop() {
	for _, s := range sc.sensors() {
		s.Stop()
	}
}

// Dispose stops every reader and closes its queue.
func (sc *SensorsController) Dispose() {
	for _, s := range sc.sensors() {
		s.Dispose()
	}
	utils.L().Info("sensors controller: readers disposed")
}

// Dropped returns producer-side drops per stream name.
func (sc *SensorsController) Dropped() map[string]uint64 {
	out := make(map[string]uint64, 3)
	for _, s := range sc.sensors() {
		_, d := s.Stats()
		out[s.Name()] = d
	}
	return out
}

// LogStats prints current produce/drop counters for each active sensor.
func (sc *SensorsController) LogStats() {
	for _, s := range sc.sensors() {
		p, d := s.Stats()
		utils.L().Info("  %-13s produced=%d  dropped=%d", s.Name(), p, d)
	}
}
