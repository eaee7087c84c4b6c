package align

import (
	"cmp"
	"slices"

	"sensor-recorder/models"
)

// FillMode selects how a row with no exact sample for a stream is filled.
type FillMode int

const (
	// FillInterpolate interpolates between the nearest samples on either
	// side and carries the edge value outside the observed range.
	FillInterpolate FillMode = iota
	// FillNone leaves the field absent unless the stream has a sample at
	// exactly that timestamp.
	FillNone
)

func (m FillMode) String() string {
	if m == FillNone {
		return "none"
	}
	return "interpolate"
}

// ParseFillMode maps a config string to a FillMode. Unknown values select
// FillInterpolate.
func ParseFillMode(s string) FillMode {
	if s == "none" {
		return FillNone
	}
	return FillInterpolate
}

// Merge aligns the three streams on the union of their timestamps using
// FillInterpolate.
func Merge(loud []models.LoudnessPoint, accel, gyro []models.MotionSample) []models.MergedRow {
	return MergeWith(FillInterpolate, loud, accel, gyro)
}

// MergeWith aligns the three streams on the sorted union of their timestamps.
// Any stream may be empty; its fields are then absent on every row. Output
// times are strictly increasing.
//
// Each stream is walked once with a bracket cursor, so the cost is linear in
// rows plus samples after the initial sort.
func MergeWith(mode FillMode, loud []models.LoudnessPoint, accel, gyro []models.MotionSample) []models.MergedRow {
	ls := loudnessSeries(loud)
	as := motionSeries(accel)
	gs := motionSeries(gyro)

	times := make([]int64, 0, len(ls.ts)+len(as.ts)+len(gs.ts))
	times = append(times, ls.ts...)
	times = append(times, as.ts...)
	times = append(times, gs.ts...)
	slices.Sort(times)
	times = slices.Compact(times)

	rows := make([]models.MergedRow, len(times))
	for i, t := range times {
		rows[i].TimestampMs = t
	}

	ls.fill(times, mode, func(i int, v [3]float64) {
		d := v[0]
		rows[i].Decibel = &d
	})
	as.fill(times, mode, func(i int, v [3]float64) {
		rows[i].Accel = &models.Axes{X: v[0], Y: v[1], Z: v[2]}
	})
	gs.fill(times, mode, func(i int, v [3]float64) {
		rows[i].Gyro = &models.Axes{X: v[0], Y: v[1], Z: v[2]}
	})
	return rows
}

// series is one stream reduced to unique ascending timestamps. Samples that
// share a millisecond are averaged field by field.
type series struct {
	ts   []int64
	vals [][3]float64
}

type stamped struct {
	t int64
	v [3]float64
}

func loudnessSeries(points []models.LoudnessPoint) series {
	in := make([]stamped, len(points))
	for i, p := range points {
		in[i] = stamped{t: p.TimestampMs, v: [3]float64{p.Decibel}}
	}
	return newSeries(in)
}

func motionSeries(samples []models.MotionSample) series {
	in := make([]stamped, len(samples))
	for i, s := range samples {
		in[i] = stamped{t: s.TimestampMs, v: [3]float64{s.X, s.Y, s.Z}}
	}
	return newSeries(in)
}

func newSeries(in []stamped) series {
	slices.SortStableFunc(in, func(a, b stamped) int { return cmp.Compare(a.t, b.t) })

	var s series
	for i := 0; i < len(in); {
		j := i + 1
		sum := in[i].v
		for j < len(in) && in[j].t == in[i].t {
			for f := range sum {
				sum[f] += in[j].v[f]
			}
			j++
		}
		if n := float64(j - i); n > 1 {
			for f := range sum {
				sum[f] /= n
			}
		}
		s.ts = append(s.ts, in[i].t)
		s.vals = append(s.vals, sum)
		i = j
	}
	return s
}

// fill resolves the stream's value at every row time and hands it to set.
// Rows the stream cannot fill are skipped.
func (s series) fill(times []int64, mode FillMode, set func(i int, v [3]float64)) {
	if len(s.ts) == 0 {
		return
	}
	j := 0 // first stream index with ts >= t
	for i, t := range times {
		for j < len(s.ts) && s.ts[j] < t {
			j++
		}
		if j < len(s.ts) && s.ts[j] == t {
			set(i, s.vals[j])
			continue
		}
		if mode == FillNone {
			continue
		}

		hasPrev, hasNext := j > 0, j < len(s.ts)
		switch {
		case hasPrev && hasNext:
			set(i, lerp(s.ts[j-1], s.vals[j-1], s.ts[j], s.vals[j], t))
		case hasPrev:
			set(i, s.vals[j-1])
		case hasNext:
			set(i, s.vals[j])
		}
	}
}

func lerp(t0 int64, v0 [3]float64, t1 int64, v1 [3]float64, t int64) [3]float64 {
	frac := float64(t-t0) / float64(t1-t0)
	var out [3]float64
	for f := range out {
		out[f] = v0[f] + frac*(v1[f]-v0[f])
	}
	return out
}
