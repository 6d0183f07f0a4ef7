// Package ring provides the bounded single-producer/single-consumer buffer
// that hands normalized complex samples from an acquisition stage to the
// downstream pipeline.
package ring

import (
	"fmt"
	"sync"
)

// Ring is a bounded circular buffer of complex64 samples. Exactly one
// goroutine may produce and exactly one may consume. Produce blocks while
// the buffer is full; Consume blocks while it is empty. Close is the
// producer's one-shot end-of-stream signal.
type Ring struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	buf      []complex64
	head     int // next write position
	tail     int // next read position
	count    int
	closed   bool
}

// New creates a ring holding up to capacity samples.
func New(capacity int) (*Ring, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("ring capacity must be positive, got %d", capacity)
	}
	r := &Ring{buf: make([]complex64, capacity)}
	r.notFull = sync.NewCond(&r.mu)
	r.notEmpty = sync.NewCond(&r.mu)
	return r, nil
}

// Cap returns the buffer capacity in samples.
func (r *Ring) Cap() int { return len(r.buf) }

// Produce appends samples in order, blocking while the buffer is full.
// Producing on a closed ring is a no-op.
func (r *Ring) Produce(samples []complex64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range samples {
		for r.count == len(r.buf) && !r.closed {
			r.notFull.Wait()
		}
		if r.closed {
			return
		}
		r.buf[r.head] = s
		r.head = (r.head + 1) % len(r.buf)
		r.count++
		r.notEmpty.Signal()
	}
}

// Consume fills dst with buffered samples, blocking until at least one is
// available or the stream has ended. It returns the number of samples
// copied and false once the ring is closed and fully drained.
func (r *Ring) Consume(dst []complex64) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.count == 0 && !r.closed {
		r.notEmpty.Wait()
	}
	if r.count == 0 {
		return 0, false
	}
	n := 0
	for n < len(dst) && r.count > 0 {
		dst[n] = r.buf[r.tail]
		r.tail = (r.tail + 1) % len(r.buf)
		r.count--
		n++
	}
	r.notFull.Broadcast()
	return n, true
}

// Close marks the end of the stream. Buffered samples remain consumable;
// subsequent Produce calls are ignored. Safe to call more than once.
func (r *Ring) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.notEmpty.Broadcast()
	r.notFull.Broadcast()
}

// Len returns the number of buffered samples.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
