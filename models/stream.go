package models

// StreamID identifies one of the three independently clocked sensor streams.
type StreamID int

const (
	StreamLoudness StreamID = iota
	StreamAccelerometer
	StreamGyroscope
)

// Streams lists every stream in teardown order.
var Streams = []StreamID{StreamLoudness, StreamAccelerometer, StreamGyroscope}

var streamNames = map[StreamID]string{
	StreamLoudness:      "loudness",
	StreamAccelerometer: "accelerometer",
	StreamGyroscope:     "gyroscope",
}

func (s StreamID) String() string {
	if n, ok := streamNames[s]; ok {
		return n
	}
	return "unknown"
}

// IsMotion reports whether the stream carries MotionSample values.
func (s StreamID) IsMotion() bool {
	return s == StreamAccelerometer || s == StreamGyroscope
}
