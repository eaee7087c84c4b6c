package controller

import (
	"context"
	"errors"
	"slices"
	"sync"

	"sensor-recorder/metrics"
	"sensor-recorder/models"
	"sensor-recorder/utils"
)

var (
	// ErrNoSession is returned when an operation needs a session and none is open.
	ErrNoSession = errors.New("no active session")
	// ErrNothingRecorded is returned when exporting a session with no samples.
	ErrNothingRecorded = errors.New("session recorded no samples")
)

// AcquisitionController is the single consumer of all sensor queues. Its
// drain loop is the only writer to the session's ring buffers and history;
// readers (live display, export) take their copies under the same mutex in
// one step.
type AcquisitionController struct {
	mu      sync.Mutex
	session *Session
	metrics *metrics.Metrics

	lastDropped map[string]uint64
	done        chan struct{}
}

// NewAcquisitionController creates the consumer stage. m may be nil.
func NewAcquisitionController(m *metrics.Metrics) *AcquisitionController {
	if m == nil {
		m = metrics.New(nil)
	}
	return &AcquisitionController{metrics: m, lastDropped: make(map[string]uint64)}
}

// Begin installs s as the session receiving samples, replacing any previous one.
func (ac *AcquisitionController) Begin(s *Session) {
	ac.mu.Lock()
	ac.session = s
	ac.mu.Unlock()
	ac.metrics.SessionsStarted.Inc()
	utils.L().Info("session %s started", s.ID)
}

// End detaches the current session and returns it.
func (ac *AcquisitionController) End() *Session {
	ac.mu.Lock()
	s := ac.session
	ac.session = nil
	ac.mu.Unlock()
	return s
}

// Session returns the active session, or nil.
func (ac *AcquisitionController) Session() *Session {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.session
}

// Start launches the drain loop over the sensors controller's queues. The
// loop exits when ctx is cancelled or every queue is closed.
func (ac *AcquisitionController) Start(ctx context.Context, sc *SensorsController) {
	ac.done = make(chan struct{})
	go ac.drain(ctx, sc.AudioCh, sc.AccelCh, sc.GyroCh)
	utils.L().Info("acquisition controller started")
}

// Done is closed when the drain loop has exited.
func (ac *AcquisitionController) Done() <-chan struct{} { return ac.done }

func (ac *AcquisitionController) drain(ctx context.Context,
	audio <-chan models.LoudnessBatch, accel, gyro <-chan models.MotionSample) {
	defer close(ac.done)

	for audio != nil || accel != nil || gyro != nil {
		select {
		case <-ctx.Done():
			utils.L().Info("acquisition controller stopped")
			return
		case b, ok := <-audio:
			if !ok {
				audio = nil
				continue
			}
			ac.IngestLoudness(b)
		case s, ok := <-accel:
			if !ok {
				accel = nil
				continue
			}
			ac.IngestMotion(models.StreamAccelerometer, s)
		case s, ok := <-gyro:
			if !ok {
				gyro = nil
				continue
			}
			ac.IngestMotion(models.StreamGyroscope, s)
		}
	}
	utils.L().Info("acquisition controller stopped (all queues closed)")
}

// IngestLoudness validates b, rebases its timestamp to session time and
// stores a copy with its level recomputed from the amplitudes. Invalid
// batches are counted as discarded and reported false.
func (ac *AcquisitionController) IngestLoudness(b models.LoudnessBatch) bool {
	const stream = models.StreamLoudness
	ac.mu.Lock()
	defer ac.mu.Unlock()

	s := ac.session
	if s == nil {
		return false
	}
	if !b.Valid() {
		ac.discard(s, stream)
		return false
	}

	b = models.NewLoudnessBatch(s.Relative(b.TimestampMs), slices.Clone(b.Amplitudes))
	s.Loudness.Push(b)
	s.History.AppendLoudness(b)
	s.revision++

	ac.metrics.RecordReceived(stream.String())
	ac.metrics.SetRingFill(stream.String(), s.Loudness.Size())
	return true
}

// IngestMotion validates and stores one accelerometer or gyroscope reading.
func (ac *AcquisitionController) IngestMotion(stream models.StreamID, m models.MotionSample) bool {
	if !stream.IsMotion() {
		return false
	}
	ac.mu.Lock()
	defer ac.mu.Unlock()

	s := ac.session
	if s == nil {
		return false
	}
	if !m.Valid() {
		ac.discard(s, stream)
		return false
	}

	m = models.NewMotionSample(s.Relative(m.TimestampMs), m.X, m.Y, m.Z)
	ring := s.ring(stream)
	ring.Push(m)
	s.History.AppendMotion(stream, m)
	s.revision++

	ac.metrics.RecordReceived(stream.String())
	ac.metrics.SetRingFill(stream.String(), ring.Size())
	return true
}

func (ac *AcquisitionController) discard(s *Session, stream models.StreamID) {
	s.discarded[stream]++
	ac.metrics.RecordDiscarded(stream.String())
	utils.L().Debug("discarded invalid %s sample (total=%d)", stream, s.discarded[stream])
}

// Live returns the latest value per stream and the collection counters.
func (ac *AcquisitionController) Live() models.LiveStatus {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	st := models.LiveStatus{Streams: make(map[string]models.StreamStatus, 3)}
	s := ac.session
	if s == nil {
		return st
	}
	st.SessionID = s.ID.String()

	if b, ok := s.Loudness.Latest(); ok {
		st.Loudness = &b
	}
	if m, ok := s.Accel.Latest(); ok {
		st.Accel = &m
	}
	if m, ok := s.Gyro.Latest(); ok {
		st.Gyro = &m
	}

	st.Streams[models.StreamLoudness.String()] = models.StreamStatus{
		Collected: s.History.Len(models.StreamLoudness),
		Buffered:  s.Loudness.Size(),
		Discarded: s.discarded[models.StreamLoudness],
	}
	for _, id := range []models.StreamID{models.StreamAccelerometer, models.StreamGyroscope} {
		st.Streams[id.String()] = models.StreamStatus{
			Collected: s.History.Len(id),
			Buffered:  s.ring(id).Size(),
			Discarded: s.discarded[id],
		}
	}
	return st
}

// Recent returns the live ring buffer contents of a motion stream, oldest first.
func (ac *AcquisitionController) Recent(stream models.StreamID) []models.MotionSample {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.session == nil || !stream.IsMotion() {
		return nil
	}
	return ac.session.ring(stream).Snapshot()
}

// RecentLoudness returns the live loudness ring buffer contents, oldest first.
func (ac *AcquisitionController) RecentLoudness() []models.LoudnessBatch {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.session == nil {
		return nil
	}
	return ac.session.Loudness.Snapshot()
}

// Snapshot copies the active session's full history in one step.
func (ac *AcquisitionController) Snapshot() (*Snapshot, error) {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	s := ac.session
	if s == nil {
		return nil, ErrNoSession
	}
	return &Snapshot{
		SessionID: s.ID,
		StartedAt: s.StartedAt,
		Revision:  s.revision,
		Loudness:  s.History.ExportLoudness(),
		Accel:     s.History.ExportMotion(models.StreamAccelerometer),
		Gyro:      s.History.ExportMotion(models.StreamGyroscope),
	}, nil
}

// Reset clears the active session's buffers and history.
func (ac *AcquisitionController) Reset() {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.session != nil {
		ac.session.Clear()
	}
}

// RecordDrops folds cumulative producer drop counters into the metrics.
func (ac *AcquisitionController) RecordDrops(dropped map[string]uint64) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	for name, total := range dropped {
		if last := ac.lastDropped[name]; total > last {
			ac.metrics.RecordDropped(name, total-last)
		}
		ac.lastDropped[name] = total
	}
}
