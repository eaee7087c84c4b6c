package models

// StreamStatus summarises one stream of the running session.
type StreamStatus struct {
	Collected int    `json:"collected"` // samples in session history
	Buffered  int    `json:"buffered"`  // samples in the live ring buffer
	Discarded uint64 `json:"discarded"` // invalid samples rejected at ingestion
}

// LiveStatus is what live displays render: the latest value per stream plus
// collection counters.
type LiveStatus struct {
	SessionID   string                  `json:"session_id"`
	State       string                  `json:"state"`
	RemainingMs int64                   `json:"remaining_ms"`
	Loudness    *LoudnessBatch          `json:"loudness,omitempty"`
	Accel       *MotionSample           `json:"accelerometer,omitempty"`
	Gyro        *MotionSample           `json:"gyroscope,omitempty"`
	Streams     map[string]StreamStatus `json:"streams"`
}
