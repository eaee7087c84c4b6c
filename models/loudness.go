package models

import "math"

// MinRMS floors the RMS before the log so silence maps to -200 dB, not -Inf.
const MinRMS = 1e-10

// LoudnessBatch is one burst of waveform samples delivered by the microphone
// feed. Every amplitude shares the batch's arrival timestamp.
type LoudnessBatch struct {
	TimestampMs int64     `json:"t"`
	Amplitudes  []float64 `json:"amplitudes"`
	Decibel     float64   `json:"decibel"` // relative dB of the whole batch
}

// NewLoudnessBatch builds a batch and computes its relative decibel level.
func NewLoudnessBatch(ts int64, amplitudes []float64) LoudnessBatch {
	return LoudnessBatch{
		TimestampMs: ts,
		Amplitudes:  amplitudes,
		Decibel:     Decibel(RMS(amplitudes)),
	}
}

// Valid reports whether the batch can enter a buffer: it must hold at least
// one amplitude and every amplitude must be finite.
func (b LoudnessBatch) Valid() bool {
	return len(b.Amplitudes) > 0 && finite(b.Amplitudes...)
}

// RMS returns the root-mean-square of the samples (0 for an empty slice).
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Decibel converts an RMS amplitude to relative decibels: 20·log10(max(rms, MinRMS)).
func Decibel(rms float64) float64 {
	return 20 * math.Log10(math.Max(rms, MinRMS))
}

// LoudnessPoint is one amplitude after it has been given its own synthetic
// timestamp by the batch distributor.
type LoudnessPoint struct {
	TimestampMs int64   `json:"t"`
	Decibel     float64 `json:"decibel"`
}

// SampleRows expands the batch into one row per amplitude. Only the first row
// carries the batch time.
func (b *LoudnessBatch) SampleRows() [][]string {
	rows := make([][]string, 0, len(b.Amplitudes))
	for i, a := range b.Amplitudes {
		t := ""
		if i == 0 {
			t = itoa64(b.TimestampMs)
		}
		rows = append(rows, []string{t, ftoa(a)})
	}
	return rows
}
