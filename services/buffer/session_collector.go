package buffer

import (
	"cmp"
	"slices"

	"sensor-recorder/models"
)

// SessionCollector accumulates every sample observed during one session, per
// stream, for export. Unlike RingBuffer it never evicts; its size is bounded
// only by the session duration.
//
// Like RingBuffer it has no internal locking.
type SessionCollector struct {
	loudness []models.LoudnessBatch
	accel    []models.MotionSample
	gyro     []models.MotionSample
}

// NewSessionCollector returns an empty collector.
func NewSessionCollector() *SessionCollector {
	return &SessionCollector{}
}

// AppendLoudness records one microphone batch. No dedup is performed.
func (c *SessionCollector) AppendLoudness(b models.LoudnessBatch) {
	c.loudness = append(c.loudness, b)
}

// AppendMotion records one reading for the accelerometer or gyroscope stream.
// Samples for any other stream are ignored and reported as false.
func (c *SessionCollector) AppendMotion(stream models.StreamID, s models.MotionSample) bool {
	switch stream {
	case models.StreamAccelerometer:
		c.accel = append(c.accel, s)
	case models.StreamGyroscope:
		c.gyro = append(c.gyro, s)
	default:
		return false
	}
	return true
}

// ExportLoudness returns a copy of the loudness batches sorted by timestamp.
// The sort is stable, so batches sharing a timestamp keep arrival order.
func (c *SessionCollector) ExportLoudness() []models.LoudnessBatch {
	out := slices.Clone(c.loudness)
	slices.SortStableFunc(out, func(a, b models.LoudnessBatch) int {
		return cmp.Compare(a.TimestampMs, b.TimestampMs)
	})
	return out
}

// ExportMotion returns a sorted copy of one motion stream's samples.
func (c *SessionCollector) ExportMotion(stream models.StreamID) []models.MotionSample {
	var src []models.MotionSample
	switch stream {
	case models.StreamAccelerometer:
		src = c.accel
	case models.StreamGyroscope:
		src = c.gyro
	}
	out := slices.Clone(src)
	slices.SortStableFunc(out, func(a, b models.MotionSample) int {
		return cmp.Compare(a.TimestampMs, b.TimestampMs)
	})
	return out
}

// Len returns how many records the stream has collected.
func (c *SessionCollector) Len(stream models.StreamID) int {
	switch stream {
	case models.StreamLoudness:
		return len(c.loudness)
	case models.StreamAccelerometer:
		return len(c.accel)
	case models.StreamGyroscope:
		return len(c.gyro)
	}
	return 0
}

// Reset discards everything collected so far.
func (c *SessionCollector) Reset() {
	c.loudness = nil
	c.accel = nil
	c.gyro = nil
}
