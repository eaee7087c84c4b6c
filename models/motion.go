package models

import "math"

// MotionSample holds one accelerometer or gyroscope reading. The two sensors
// share this shape; only the unit differs (m/s² vs rad/s).
type MotionSample struct {
	TimestampMs int64   `json:"t"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	Magnitude   float64 `json:"magnitude"`
}

// NewMotionSample builds a sample and fills in its magnitude.
func NewMotionSample(ts int64, x, y, z float64) MotionSample {
	return MotionSample{
		TimestampMs: ts,
		X:           x,
		Y:           y,
		Z:           z,
		Magnitude:   math.Sqrt(x*x + y*y + z*z),
	}
}

// Valid reports whether every axis value is finite.
func (s MotionSample) Valid() bool {
	return finite(s.X, s.Y, s.Z)
}

// CSVRow returns Time, x, y, z and magnitude.
func (s *MotionSample) CSVRow() []string {
	return []string{
		itoa64(s.TimestampMs),
		ftoa(s.X), ftoa(s.Y), ftoa(s.Z),
		ftoa(s.Magnitude),
	}
}
