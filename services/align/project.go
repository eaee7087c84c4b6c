package align

import "sensor-recorder/models"

// Project splits a merged table back into per-stream sequences, keeping only
// rows where the stream's field is present. Feeding the result back through
// MergeWith with the same mode reproduces rows.
func Project(rows []models.MergedRow) (loud []models.LoudnessPoint, accel, gyro []models.MotionSample) {
	for _, r := range rows {
		if r.Decibel != nil {
			loud = append(loud, models.LoudnessPoint{TimestampMs: r.TimestampMs, Decibel: *r.Decibel})
		}
		if r.Accel != nil {
			accel = append(accel, models.NewMotionSample(r.TimestampMs, r.Accel.X, r.Accel.Y, r.Accel.Z))
		}
		if r.Gyro != nil {
			gyro = append(gyro, models.NewMotionSample(r.TimestampMs, r.Gyro.X, r.Gyro.Y, r.Gyro.Z))
		}
	}
	return loud, accel, gyro
}
