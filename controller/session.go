package controller

import (
	"time"

	"github.com/google/uuid"

	"sensor-recorder/models"
	"sensor-recorder/services/buffer"
	"sensor-recorder/utils"
)

// Session owns everything one measurement run collects: the live ring
// buffers, the full history, and the discard counters. A new Session is built
// for every run; nothing is shared between runs.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time

	Loudness *buffer.RingBuffer[models.LoudnessBatch]
	Accel    *buffer.RingBuffer[models.MotionSample]
	Gyro     *buffer.RingBuffer[models.MotionSample]
	History  *buffer.SessionCollector

	epochMs   int64
	revision  uint64 // bumped on every accepted sample and on Clear
	discarded map[models.StreamID]uint64
}

// NewSession sizes the ring buffers from the sensor config. Sample
// timestamps are stored relative to startedAt.
func NewSession(cfg *utils.SensorsConfig, startedAt time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		StartedAt: startedAt,
		Loudness:  buffer.NewRingBuffer[models.LoudnessBatch](cfg.Sensors.Microphone.RingCapacity),
		Accel:     buffer.NewRingBuffer[models.MotionSample](cfg.Sensors.Accelerometer.RingCapacity),
		Gyro:      buffer.NewRingBuffer[models.MotionSample](cfg.Sensors.Gyroscope.RingCapacity),
		History:   buffer.NewSessionCollector(),
		epochMs:   startedAt.UnixMilli(),
		discarded: make(map[models.StreamID]uint64),
	}
}

// Relative converts an absolute millisecond timestamp to session time.
func (s *Session) Relative(ts int64) int64 { return ts - s.epochMs }

// Discarded returns how many invalid samples the stream rejected.
func (s *Session) Discarded(stream models.StreamID) uint64 { return s.discarded[stream] }

// ring returns the motion ring buffer for a stream.
func (s *Session) ring(stream models.StreamID) *buffer.RingBuffer[models.MotionSample] {
	if stream == models.StreamGyroscope {
		return s.Gyro
	}
	return s.Accel
}

// Clear empties buffers and history in place.
func (s *Session) Clear() {
	s.Loudness.Clear()
	s.Accel.Clear()
	s.Gyro.Clear()
	s.History.Reset()
	clear(s.discarded)
	s.revision++
}

// Snapshot is an immutable copy of a session's history, sorted per stream.
type Snapshot struct {
	SessionID uuid.UUID
	StartedAt time.Time
	Revision  uint64 // equal revisions of one session hold equal data
	Loudness  []models.LoudnessBatch
	Accel     []models.MotionSample
	Gyro      []models.MotionSample
}

// Empty reports whether no stream collected anything.
func (s *Snapshot) Empty() bool {
	return len(s.Loudness) == 0 && len(s.Accel) == 0 && len(s.Gyro) == 0
}
