package align

import "sensor-recorder/models"

// Coalesce merges consecutive batches that share an identical timestamp into
// one batch, concatenating their amplitudes in arrival order. Input must be
// sorted by timestamp with ties in arrival order, as returned by
// SessionCollector.ExportLoudness. The input slice is not modified.
func Coalesce(batches []models.LoudnessBatch) []models.LoudnessBatch {
	out := make([]models.LoudnessBatch, 0, len(batches))
	for _, b := range batches {
		if n := len(out); n > 0 && out[n-1].TimestampMs == b.TimestampMs {
			out[n-1].Amplitudes = append(out[n-1].Amplitudes, b.Amplitudes...)
			continue
		}
		amps := make([]float64, len(b.Amplitudes))
		copy(amps, b.Amplitudes)
		out = append(out, models.LoudnessBatch{TimestampMs: b.TimestampMs, Amplitudes: amps})
	}
	for i := range out {
		out[i].Decibel = models.Decibel(models.RMS(out[i].Amplitudes))
	}
	return out
}

// NominalSpanMs is how long k samples last at sampleRate Hz, in whole
// milliseconds. It is 0 when the rate is unknown.
func NominalSpanMs(k, sampleRate int) int64 {
	if sampleRate <= 0 || k <= 0 {
		return 0
	}
	return int64(k) * 1000 / int64(sampleRate)
}

// Distribute spreads each batch's samples evenly across (prevT, t], where
// prevT is the previous batch's timestamp. Sample i of k lands on
// prevT + Δ·(i+1)/k, rounded up to the millisecond so no sample falls back
// onto prevT when Δ < k. The first batch spans its own nominal duration at
// sampleRate.
//
// Batches must already be coalesced; equal neighbouring timestamps would
// collapse a batch onto a single instant.
func Distribute(batches []models.LoudnessBatch, sampleRate int) []models.LoudnessPoint {
	var total int
	for _, b := range batches {
		total += len(b.Amplitudes)
	}
	points := make([]models.LoudnessPoint, 0, total)

	for idx, b := range batches {
		k := int64(len(b.Amplitudes))
		if k == 0 {
			continue
		}
		var prevT int64
		if idx == 0 {
			prevT = b.TimestampMs - NominalSpanMs(len(b.Amplitudes), sampleRate)
		} else {
			prevT = batches[idx-1].TimestampMs
		}
		delta := b.TimestampMs - prevT
		for i, a := range b.Amplitudes {
			points = append(points, models.LoudnessPoint{
				TimestampMs: prevT + ceilDiv(delta*int64(i+1), k),
				Decibel:     a,
			})
		}
	}
	return points
}

// ceilDiv rounds a/b up for a >= 0, b > 0.
func ceilDiv(a, b int64) int64 { return (a + b - 1) / b }

// CoalesceAndDistribute turns exported loudness batches into per-sample points.
func CoalesceAndDistribute(batches []models.LoudnessBatch, sampleRate int) []models.LoudnessPoint {
	return Distribute(Coalesce(batches), sampleRate)
}
