// Package queue provides the per-track buffer of decoded but not yet
// consumed input samples that sits between a track cursor and its rate
// converter. The queue is exclusively owned by one mixer and accessed from
// one goroutine, so unlike a general ring buffer it carries no locking; it
// compacts pending samples to the front instead of wrapping, which keeps
// the pending region contiguous for the converter.
package queue

// Queue is a bounded compacting FIFO of float64 samples.
type Queue struct {
	data  []float64
	start int
	n     int
}

// New creates a queue with the given fixed capacity.
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{data: make([]float64, capacity)}
}

// Len returns the number of pending samples.
func (q *Queue) Len() int { return q.n }

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return len(q.data) }

// Free returns how many samples can be appended after compaction.
func (q *Queue) Free() int { return len(q.data) - q.n }

// Pending returns a view of the buffered samples, oldest first.
// The view is invalidated by the next Slot call.
func (q *Queue) Pending() []float64 {
	return q.data[q.start : q.start+q.n]
}

// Slot compacts the pending samples to the front of the buffer and returns
// a writable slice of n samples following them. Committing the write is a
// separate step so a failed fill can be abandoned. n must not exceed Free.
func (q *Queue) Slot(n int) []float64 {
	if q.start > 0 {
		copy(q.data, q.data[q.start:q.start+q.n])
		q.start = 0
	}
	return q.data[q.n : q.n+n]
}

// Commit marks n samples previously obtained from Slot as pending.
func (q *Queue) Commit(n int) {
	q.n += n
}

// Discard drops the n oldest pending samples.
func (q *Queue) Discard(n int) {
	if n > q.n {
		n = q.n
	}
	q.start += n
	q.n -= n
	if q.n == 0 {
		q.start = 0
	}
}

// Clear drops all pending samples.
func (q *Queue) Clear() {
	q.start = 0
	q.n = 0
}
