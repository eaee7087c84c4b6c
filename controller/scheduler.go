package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"sensor-recorder/utils"
)

// State is the scheduler's position in a session's lifecycle.
type State int

const (
	StateWaiting  State = iota // before the initial delay elapsed
	StateRunning               // acquisition active
	StatePaused                // stopped with run budget left
	StateFinished              // run budget spent; restart refused
)

var stateNames = [...]string{"waiting", "running", "paused", "finished"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

var (
	ErrStillWaiting   = errors.New("scheduler: initial wait not elapsed")
	ErrMaxRunReached  = errors.New("scheduler: maximum run time reached")
	ErrAlreadyRunning = errors.New("scheduler: already running")
	ErrNotRunning     = errors.New("scheduler: not running")
)

// Acquirer is what the scheduler switches on and off.
type Acquirer interface {
	Start(ctx context.Context) error
	Stop()
}

// Scheduler decides when acquisition runs: it waits an initial delay, then
// runs for at most a total budget. Pauses preserve the unused budget. Once
// the budget is spent the scheduler is finished and Done is closed.
type Scheduler struct {
	wait   time.Duration
	maxRun time.Duration // <= 0 means unlimited
	target Acquirer
	now    func() time.Time

	mu        sync.Mutex
	ctx       context.Context
	state     State
	remaining time.Duration
	runStart  time.Time
	timer     *time.Timer
	gen       uint64 // invalidates timers from earlier runs
	done      chan struct{}
}

// NewScheduler builds a scheduler driving target.
func NewScheduler(cfg utils.TimingConfig, target Acquirer) *Scheduler {
	return &Scheduler{
		wait:      time.Duration(cfg.WaitMs) * time.Millisecond,
		maxRun:    time.Duration(cfg.MaxRunMs) * time.Millisecond,
		remaining: time.Duration(cfg.MaxRunMs) * time.Millisecond,
		target:    target,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// Arm waits out the initial delay on a background goroutine, then starts
// acquisition. Cancelling ctx before the delay elapses abandons the start.
func (s *Scheduler) Arm(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	go func() {
		t := time.NewTimer(s.wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		s.mu.Lock()
		if s.state == StateWaiting {
			s.state = StatePaused
		}
		s.mu.Unlock()

		if err := s.Resume(); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			utils.L().Error("scheduler: start after wait: %v", err)
		}
	}()
}

// Resume starts acquisition with whatever budget is left.
func (s *Scheduler) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateWaiting:
		return ErrStillWaiting
	case StateFinished:
		return ErrMaxRunReached
	case StateRunning:
		return ErrAlreadyRunning
	}

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.target.Start(ctx); err != nil {
		return err
	}

	s.state = StateRunning
	s.runStart = s.now()
	s.gen++
	if s.maxRun > 0 {
		gen := s.gen
		s.timer = time.AfterFunc(s.remaining, func() { s.expire(gen) })
	}
	utils.L().Info("scheduler: running (remaining=%s)", s.remainingLocked())
	return nil
}

// Pause stops acquisition and banks the unused budget. Pausing with the
// budget already spent finishes the scheduler instead.
func (s *Scheduler) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return ErrNotRunning
	}
	s.haltLocked()
	s.state = StatePaused
	if s.maxRun > 0 && s.remaining == 0 {
		utils.L().Info("scheduler: maximum run time reached")
		s.finishLocked()
		return nil
	}
	utils.L().Info("scheduler: paused (remaining=%s)", s.remaining)
	return nil
}

// Toggle pauses a running session or resumes a paused one.
func (s *Scheduler) Toggle() error {
	if s.State() == StateRunning {
		return s.Pause()
	}
	return s.Resume()
}

// Finish stops acquisition for good, as if the budget had run out.
func (s *Scheduler) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked()
}

func (s *Scheduler) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.state != StateRunning {
		return
	}
	utils.L().Info("scheduler: maximum run time reached")
	s.finishLocked()
}

func (s *Scheduler) finishLocked() {
	if s.state == StateFinished {
		return
	}
	if s.state == StateRunning {
		s.haltLocked()
	}
	s.state = StateFinished
	s.remaining = 0
	close(s.done)
}

// haltLocked stops the target and charges the elapsed run time to the budget.
func (s *Scheduler) haltLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.target.Stop()
	if s.maxRun > 0 {
		s.remaining -= s.now().Sub(s.runStart)
		if s.remaining < 0 {
			s.remaining = 0
		}
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining returns the unused run budget. It is 0 when unlimited.
func (s *Scheduler) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked()
}

func (s *Scheduler) remainingLocked() time.Duration {
	if s.maxRun <= 0 {
		return 0
	}
	if s.state != StateRunning {
		return s.remaining
	}
	left := s.remaining - s.now().Sub(s.runStart)
	if left < 0 {
		return 0
	}
	return left
}

// Done is closed once the scheduler is finished.
func (s *Scheduler) Done() <-chan struct{} { return s.done }
