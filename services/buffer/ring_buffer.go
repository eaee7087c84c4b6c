package buffer

// RingBuffer is a fixed-capacity circular store of the most recent samples of
// one stream. Once full, every Push evicts exactly the oldest element.
//
// RingBuffer is not safe for concurrent use. The owner guarantees a single
// writer and must not call Snapshot while a Push is in flight.
type RingBuffer[T any] struct {
	buf  []T
	head int // next write slot
	full bool
}

// NewRingBuffer allocates a buffer holding up to capacity elements.
// A non-positive capacity falls back to 1.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer[T]{buf: make([]T, capacity)}
}

// Push stores v, overwriting the oldest element when the buffer is full.
func (r *RingBuffer[T]) Push(v T) {
	r.buf[r.head] = v
	r.head++
	if r.head == len(r.buf) {
		r.head = 0
		r.full = true
	}
}

// Latest returns the most recently pushed element. ok is false if nothing was
// pushed since construction or the last Clear.
func (r *RingBuffer[T]) Latest() (v T, ok bool) {
	if r.Size() == 0 {
		return v, false
	}
	i := r.head - 1
	if i < 0 {
		i = len(r.buf) - 1
	}
	return r.buf[i], true
}

// Snapshot copies the contents out, oldest first.
func (r *RingBuffer[T]) Snapshot() []T {
	out := make([]T, 0, r.Size())
	if r.full {
		out = append(out, r.buf[r.head:]...)
	}
	return append(out, r.buf[:r.head]...)
}

// Clear empties the buffer, keeping its backing array.
func (r *RingBuffer[T]) Clear() {
	clear(r.buf)
	r.head = 0
	r.full = false
}

// Size returns the number of stored elements.
func (r *RingBuffer[T]) Size() int {
	if r.full {
		return len(r.buf)
	}
	return r.head
}

// Cap returns the fixed capacity.
func (r *RingBuffer[T]) Cap() int { return len(r.buf) }
