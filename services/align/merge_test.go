package align

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-recorder/models"
)

func motion(t int64, x, y, z float64) models.MotionSample {
	return models.NewMotionSample(t, x, y, z)
}

func times(rows []models.MergedRow) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.TimestampMs
	}
	return out
}

func TestMerge_EmptyLoudness(t *testing.T) {
	accel := []models.MotionSample{motion(10, 1, 1, 1), motion(30, 2, 2, 2)}
	gyro := []models.MotionSample{motion(20, 0, 0, 1), motion(30, 0, 0, 2)}

	rows := Merge(nil, accel, gyro)
	assert.Equal(t, []int64{10, 20, 30}, times(rows))
	for _, r := range rows {
		assert.Nil(t, r.Decibel)
		assert.NotNil(t, r.Accel)
		assert.NotNil(t, r.Gyro)
	}
}

func TestMerge_AllEmpty(t *testing.T) {
	assert.Empty(t, Merge(nil, nil, nil))
}

func TestMerge_InterpolationExact(t *testing.T) {
	accel := []models.MotionSample{motion(0, 0, 0, 0), motion(100, 10, 20, -10)}
	loud := []models.LoudnessPoint{{TimestampMs: 40, Decibel: -30}}

	rows := Merge(loud, accel, nil)
	require.Equal(t, []int64{0, 40, 100}, times(rows))

	r := rows[1]
	require.NotNil(t, r.Accel)
	assert.Equal(t, 4.0, r.Accel.X)
	assert.Equal(t, 8.0, r.Accel.Y)
	assert.Equal(t, -4.0, r.Accel.Z)
	assert.Nil(t, r.Gyro)
}

func TestMerge_BoundaryCarry(t *testing.T) {
	accel := []models.MotionSample{motion(500, 5, 6, 7)}
	loud := []models.LoudnessPoint{{TimestampMs: 200, Decibel: -12}, {TimestampMs: 800, Decibel: -14}}

	rows := Merge(loud, accel, nil)
	require.Equal(t, []int64{200, 500, 800}, times(rows))

	// before the only sample: carried backward
	require.NotNil(t, rows[0].Accel)
	assert.Equal(t, models.Axes{X: 5, Y: 6, Z: 7}, *rows[0].Accel)
	// after it: carried forward
	require.NotNil(t, rows[2].Accel)
	assert.Equal(t, models.Axes{X: 5, Y: 6, Z: 7}, *rows[2].Accel)

	// loudness interpolated between its own brackets at 500
	require.NotNil(t, rows[1].Decibel)
	assert.Equal(t, -13.0, *rows[1].Decibel)
}

func TestMerge_OneSidedNeverZeroOrNaN(t *testing.T) {
	accel := []models.MotionSample{motion(50, 1, 2, 3), motion(500, 4, 5, 6)}
	loud := []models.LoudnessPoint{{TimestampMs: 10}, {TimestampMs: 600}}

	rows := Merge(loud, accel, nil)
	for _, r := range rows {
		require.NotNil(t, r.Accel)
		assert.False(t, math.IsNaN(r.Accel.X))
	}
	assert.Equal(t, 1.0, rows[0].Accel.X)
	assert.Equal(t, 4.0, rows[len(rows)-1].Accel.X)
}

func TestMerge_SharedTimestampsCollapse(t *testing.T) {
	loud := []models.LoudnessPoint{{TimestampMs: 10, Decibel: 1}, {TimestampMs: 20, Decibel: 2}}
	accel := []models.MotionSample{motion(10, 1, 0, 0), motion(20, 2, 0, 0)}
	gyro := []models.MotionSample{motion(20, 0, 3, 0)}

	rows := Merge(loud, accel, gyro)
	require.Equal(t, []int64{10, 20}, times(rows))
	assert.Equal(t, 2.0, *rows[1].Decibel)
	assert.Equal(t, 2.0, rows[1].Accel.X)
	assert.Equal(t, 3.0, rows[1].Gyro.Y)
	// gyro carried backward onto the first row
	assert.Equal(t, 3.0, rows[0].Gyro.Y)
}

func TestMerge_DuplicateSamplesAveraged(t *testing.T) {
	loud := []models.LoudnessPoint{{TimestampMs: 5, Decibel: 1}, {TimestampMs: 5, Decibel: 3}}

	rows := Merge(loud, nil, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, 2.0, *rows[0].Decibel)
}

func TestMerge_UnsortedInput(t *testing.T) {
	accel := []models.MotionSample{motion(100, 10, 0, 0), motion(0, 0, 0, 0)}
	rows := Merge([]models.LoudnessPoint{{TimestampMs: 50}}, accel, nil)
	require.Equal(t, []int64{0, 50, 100}, times(rows))
	assert.Equal(t, 5.0, rows[1].Accel.X)
}

func TestMerge_StrictlyAscending(t *testing.T) {
	var loud []models.LoudnessPoint
	var accel, gyro []models.MotionSample
	for i := int64(0); i < 200; i++ {
		loud = append(loud, models.LoudnessPoint{TimestampMs: i * 3, Decibel: float64(i)})
		if i%7 == 0 {
			accel = append(accel, motion(i*5, float64(i), 0, 0))
		}
		if i%11 == 0 {
			gyro = append(gyro, motion(i*4+1, 0, float64(i), 0))
		}
	}

	rows := Merge(loud, accel, gyro)
	for i := 1; i < len(rows); i++ {
		require.Less(t, rows[i-1].TimestampMs, rows[i].TimestampMs)
	}
}

func TestMerge_FillNone(t *testing.T) {
	accel := []models.MotionSample{motion(0, 0, 0, 0), motion(100, 10, 0, 0)}
	loud := []models.LoudnessPoint{{TimestampMs: 40, Decibel: -3}}

	rows := MergeWith(FillNone, loud, accel, nil)
	require.Equal(t, []int64{0, 40, 100}, times(rows))
	assert.Nil(t, rows[1].Accel)
	assert.Nil(t, rows[0].Decibel)
	assert.NotNil(t, rows[1].Decibel)
}

func TestMerge_Idempotent(t *testing.T) {
	loud := []models.LoudnessPoint{{TimestampMs: 3, Decibel: -20}, {TimestampMs: 9, Decibel: -10}, {TimestampMs: 15, Decibel: -40}}
	accel := []models.MotionSample{motion(0, 1, 2, 3), motion(12, 7, 8, 9)}
	gyro := []models.MotionSample{motion(6, 0.5, 0.25, 0.125)}

	for _, mode := range []FillMode{FillInterpolate, FillNone} {
		t.Run(mode.String(), func(t *testing.T) {
			first := MergeWith(mode, loud, accel, gyro)
			l, a, g := Project(first)
			again := MergeWith(mode, l, a, g)
			assert.Equal(t, first, again)
		})
	}
}

func TestParseFillMode(t *testing.T) {
	assert.Equal(t, FillNone, ParseFillMode("none"))
	assert.Equal(t, FillInterpolate, ParseFillMode("interpolate"))
	assert.Equal(t, FillInterpolate, ParseFillMode(""))
}
