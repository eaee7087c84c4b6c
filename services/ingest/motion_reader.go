package ingest

import (
	"context"
	"math"
	"math/rand"
	"time"

	"sensor-recorder/models"
	"sensor-recorder/utils"
)

// MotionReader produces accelerometer or gyroscope readings.
type MotionReader struct {
	*feed[models.MotionSample]
	stream models.StreamID
	cfg    utils.MotionConfig
	sim    bool
}

func NewMotionReader(stream models.StreamID, cfg utils.MotionConfig, simulate bool) *MotionReader {
	buf := cfg.ChannelBuffer
	if buf <= 0 {
		buf = 512
	}
	return &MotionReader{
		feed:   newFeed[models.MotionSample](stream.String(), buf),
		stream: stream,
		cfg:    cfg,
		sim:    simulate,
	}
}

func (r *MotionReader) Start(ctx context.Context) error {
	if err := r.start(ctx, r.run); err != nil {
		return err
	}
	utils.L().Info("%-13s reader started (rate=%dHz, simulate=%v)", r.stream, r.cfg.UpdateRateHz, r.sim)
	return nil
}

func (r *MotionReader) run(ctx context.Context) {
	if !r.sim {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(time.Second / time.Duration(r.cfg.UpdateRateHz))
	defer ticker.Stop()

	var step float64
	for {
		select {
		case <-ctx.Done():
			p, d := r.Stats()
			utils.L().Info("%-13s reader stopped (produced=%d, dropped=%d)", r.stream, p, d)
			return
		case <-ticker.C:
			r.Offer(r.read(step))
			step += 0.01
		}
	}
}

func (r *MotionReader) read(step float64) models.MotionSample {
	ts := utils.NowMilli()
	if r.stream == models.StreamGyroscope {
		return models.NewMotionSample(ts,
			0.1*math.Sin(step*2)+rand.Float64()*0.005,
			0.1*math.Cos(step*2)+rand.Float64()*0.005,
			0.05+rand.Float64()*0.002)
	}
	return models.NewMotionSample(ts,
		0.2*math.Sin(step)+rand.Float64()*0.05,
		0.1*math.Cos(step)+rand.Float64()*0.05,
		9.81+rand.Float64()*0.02)
}
