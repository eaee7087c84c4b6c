package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-recorder/utils"
)

type fakeAcquirer struct {
	mu      sync.Mutex
	starts  int
	stops   int
	running bool
	err     error
}

func (f *fakeAcquirer) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.starts++
	f.running = true
	return nil
}

func (f *fakeAcquirer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.running = false
}

func (f *fakeAcquirer) isRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func TestScheduler_WaitsThenRuns(t *testing.T) {
	acq := &fakeAcquirer{}
	s := NewScheduler(utils.TimingConfig{WaitMs: 20, MaxRunMs: 60_000}, acq)

	assert.ErrorIs(t, s.Resume(), ErrStillWaiting)
	s.Arm(context.Background())

	require.Eventually(t, func() bool { return s.State() == StateRunning }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, acq.isRunning())
	assert.ErrorIs(t, s.Resume(), ErrAlreadyRunning)
	s.Finish()
}

func TestScheduler_PauseKeepsBudget(t *testing.T) {
	acq := &fakeAcquirer{}
	s := NewScheduler(utils.TimingConfig{MaxRunMs: 10_000}, acq)
	clock := time.Unix(100, 0)
	s.now = func() time.Time { return clock }

	s.Arm(context.Background())
	require.Eventually(t, func() bool { return s.State() == StateRunning }, 2*time.Second, 5*time.Millisecond)

	clock = clock.Add(3 * time.Second)
	require.NoError(t, s.Toggle())
	assert.Equal(t, StatePaused, s.State())
	assert.Equal(t, 7*time.Second, s.Remaining())
	assert.False(t, acq.isRunning())

	clock = clock.Add(time.Hour) // paused time is free
	require.NoError(t, s.Toggle())
	assert.Equal(t, 7*time.Second, s.Remaining())
	require.NoError(t, s.Pause())
	assert.ErrorIs(t, s.Pause(), ErrNotRunning)
	s.Finish()
}

func TestScheduler_PauseWithSpentBudgetFinishes(t *testing.T) {
	acq := &fakeAcquirer{}
	s := NewScheduler(utils.TimingConfig{MaxRunMs: 10_000}, acq)
	clock := time.Unix(100, 0)
	s.now = func() time.Time { return clock }

	s.Arm(context.Background())
	require.Eventually(t, func() bool { return s.State() == StateRunning }, 2*time.Second, 5*time.Millisecond)

	clock = clock.Add(10 * time.Second)
	require.NoError(t, s.Pause())
	assert.Equal(t, StateFinished, s.State())
	assert.ErrorIs(t, s.Resume(), ErrMaxRunReached)
	assert.Equal(t, 1, acq.starts)

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestScheduler_MaxRunFinishes(t *testing.T) {
	acq := &fakeAcquirer{}
	s := NewScheduler(utils.TimingConfig{MaxRunMs: 30}, acq)
	s.Arm(context.Background())

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not finish")
	}
	assert.Equal(t, StateFinished, s.State())
	assert.False(t, acq.isRunning())
	assert.ErrorIs(t, s.Resume(), ErrMaxRunReached)
	assert.Equal(t, time.Duration(0), s.Remaining())
}

func TestScheduler_FinishIsIdempotent(t *testing.T) {
	s := NewScheduler(utils.TimingConfig{}, &fakeAcquirer{})
	s.Finish()
	s.Finish()
	assert.Equal(t, StateFinished, s.State())
	assert.Equal(t, "finished", s.State().String())
}

func TestScheduler_StartError(t *testing.T) {
	acq := &fakeAcquirer{err: errors.New("mic busy")}
	s := NewScheduler(utils.TimingConfig{}, acq)
	s.Arm(context.Background())

	require.Eventually(t, func() bool { return s.State() == StatePaused }, 2*time.Second, 5*time.Millisecond)
	assert.EqualError(t, s.Resume(), "mic busy")
}

func TestScheduler_CancelBeforeWait(t *testing.T) {
	acq := &fakeAcquirer{}
	s := NewScheduler(utils.TimingConfig{WaitMs: 50}, acq)
	ctx, cancel := context.WithCancel(context.Background())
	s.Arm(ctx)
	cancel()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, StateWaiting, s.State())
	assert.Equal(t, 0, acq.starts)
}
