package ingest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrDisposed is returned when starting a reader whose queue was already closed.
var ErrDisposed = errors.New("ingest: reader disposed")

// feed is the producer half shared by every reader: a bounded queue with a
// non-blocking send, produce/drop counters, and a restartable run loop.
type feed[T any] struct {
	name string
	Out  chan T

	produced atomic.Uint64
	dropped  atomic.Uint64

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	disposed bool
}

func newFeed[T any](name string, buf int) *feed[T] {
	return &feed[T]{name: name, Out: make(chan T, buf)}
}

// Name returns the stream name the reader produces.
func (f *feed[T]) Name() string { return f.name }

// Offer enqueues one sample without blocking. When the consumer is behind,
// the sample is dropped and counted so the producer never stalls.
func (f *feed[T]) Offer(v T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		f.dropped.Add(1)
		return false
	}
	select {
	case f.Out <- v:
		f.produced.Add(1)
		return true
	default:
		f.dropped.Add(1)
		return false
	}
}

// Stats returns (produced, dropped) counts.
func (f *feed[T]) Stats() (uint64, uint64) {
	return f.produced.Load(), f.dropped.Load()
}

// Running reports whether the run loop is active.
func (f *feed[T]) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancel != nil
}

func (f *feed[T]) start(ctx context.Context, run func(context.Context)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		return ErrDisposed
	}
	if f.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		run(runCtx)
	}()
	return nil
}

// Stop halts the run loop and waits for it to exit. The queue stays open so
// the reader can be started again.
func (f *feed[T]) Stop() {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	f.wg.Wait()
}

// Dispose stops the reader and closes its queue. It is safe to call twice.
func (f *feed[T]) Dispose() {
	f.Stop()
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.disposed {
		f.disposed = true
		close(f.Out)
	}
}
