package ingest

import (
	"context"
	"math"
	"math/rand"
	"time"

	"sensor-recorder/models"
	"sensor-recorder/utils"
)

// AudioReader produces microphone batches. With simulation enabled it
// synthesises a tone with noise; otherwise the platform's audio callback
// feeds batches in through Offer.
type AudioReader struct {
	*feed[models.LoudnessBatch]
	cfg utils.MicrophoneConfig
	sim bool
}

func NewAudioReader(cfg utils.MicrophoneConfig, simulate bool) *AudioReader {
	buf := cfg.ChannelBuffer
	if buf <= 0 {
		buf = 1024
	}
	return &AudioReader{
		feed: newFeed[models.LoudnessBatch](models.StreamLoudness.String(), buf),
		cfg:  cfg,
		sim:  simulate,
	}
}

// Start launches the simulated capture loop. Without simulation it only
// marks the reader running; batches arrive through Offer.
func (r *AudioReader) Start(ctx context.Context) error {
	if err := r.start(ctx, r.run); err != nil {
		return err
	}
	utils.L().Info("audio reader started   (rate=%dHz, batch=%d, simulate=%v)",
		r.cfg.SampleRate, r.cfg.BatchSize, r.sim)
	return nil
}

func (r *AudioReader) run(ctx context.Context) {
	if !r.sim {
		<-ctx.Done()
		return
	}

	interval := time.Duration(r.cfg.BatchSize) * time.Second / time.Duration(r.cfg.SampleRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var phase float64
	step := 2 * math.Pi * 440 / float64(r.cfg.SampleRate)
	for {
		select {
		case <-ctx.Done():
			p, d := r.Stats()
			utils.L().Info("audio reader stopped   (produced=%d, dropped=%d)", p, d)
			return
		case <-ticker.C:
			amps := make([]float64, r.cfg.BatchSize)
			for i := range amps {
				amps[i] = 0.2*math.Sin(phase) + (rand.Float64()-0.5)*0.01
				phase += step
			}
			r.Offer(models.NewLoudnessBatch(utils.NowMilli(), amps))
		}
	}
}
