package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-recorder/models"
	"sensor-recorder/utils"
)

func TestMotionReader_OfferDropsWhenFull(t *testing.T) {
	r := NewMotionReader(models.StreamAccelerometer, utils.MotionConfig{UpdateRateHz: 100, ChannelBuffer: 2}, false)

	assert.True(t, r.Offer(models.NewMotionSample(1, 0, 0, 0)))
	assert.True(t, r.Offer(models.NewMotionSample(2, 0, 0, 0)))
	assert.False(t, r.Offer(models.NewMotionSample(3, 0, 0, 0)))

	p, d := r.Stats()
	assert.Equal(t, uint64(2), p)
	assert.Equal(t, uint64(1), d)
	assert.Equal(t, "accelerometer", r.Name())
}

func TestMotionReader_Lifecycle(t *testing.T) {
	r := NewMotionReader(models.StreamGyroscope, utils.MotionConfig{UpdateRateHz: 100}, false)
	ctx := context.Background()

	require.NoError(t, r.Start(ctx))
	assert.True(t, r.Running())
	r.Stop()
	assert.False(t, r.Running())

	// restartable after Stop
	require.NoError(t, r.Start(ctx))
	r.Dispose()
	r.Dispose()

	_, open := <-r.Out
	assert.False(t, open)
	assert.ErrorIs(t, r.Start(ctx), ErrDisposed)
	assert.False(t, r.Offer(models.NewMotionSample(1, 0, 0, 0)))
}

func TestMotionReader_Simulated(t *testing.T) {
	r := NewMotionReader(models.StreamAccelerometer, utils.MotionConfig{UpdateRateHz: 500, ChannelBuffer: 64}, true)
	require.NoError(t, r.Start(context.Background()))
	defer r.Dispose()

	select {
	case s := <-r.Out:
		assert.True(t, s.Valid())
		assert.Greater(t, s.Magnitude, 9.0)
	case <-time.After(2 * time.Second):
		t.Fatal("no simulated sample")
	}
}

func TestAudioReader_Simulated(t *testing.T) {
	r := NewAudioReader(utils.MicrophoneConfig{SampleRate: 8000, BatchSize: 80}, true)
	require.NoError(t, r.Start(context.Background()))
	defer r.Dispose()

	select {
	case b := <-r.Out:
		assert.Len(t, b.Amplitudes, 80)
		assert.True(t, b.Valid())
		assert.Less(t, b.Decibel, 0.0)
	case <-time.After(2 * time.Second):
		t.Fatal("no simulated batch")
	}
}

func TestAudioReader_StopOnContextCancel(t *testing.T) {
	r := NewAudioReader(utils.MicrophoneConfig{SampleRate: 8000, BatchSize: 80}, true)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	cancel()

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
