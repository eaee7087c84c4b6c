package models

// Axes is one x/y/z triple in a merged row.
type Axes struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// MergedRow is one timestamp of the aligned table. A nil field means the
// stream had no samples to fill it from.
type MergedRow struct {
	TimestampMs int64    `json:"time"`
	Decibel     *float64 `json:"decibel,omitempty"`
	Accel       *Axes    `json:"accel,omitempty"`
	Gyro        *Axes    `json:"gyro,omitempty"`
}

// CSVRow returns one merged row, using empty strings for absent fields.
func (r *MergedRow) CSVRow() []string {
	row := make([]string, 0, 8)
	row = append(row, itoa64(r.TimestampMs))

	if r.Decibel != nil {
		row = append(row, ftoa(*r.Decibel))
	} else {
		row = append(row, "")
	}

	row = appendAxes(row, r.Accel)
	row = appendAxes(row, r.Gyro)
	return row
}

func appendAxes(row []string, a *Axes) []string {
	if a == nil {
		return append(row, "", "", "")
	}
	return append(row, ftoa(a.X), ftoa(a.Y), ftoa(a.Z))
}
