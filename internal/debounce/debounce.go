// Package debounce commits the last value of a burst once input goes quiet.
package debounce

import (
	"sync"
	"time"
)

const DefaultDelay = 500 * time.Millisecond

// Timer is the part of *time.Timer the debouncer uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Option func(*options)

type options struct {
	after AfterFunc
}

// WithAfterFunc replaces the clock, mostly for tests.
func WithAfterFunc(after AfterFunc) Option {
	return func(o *options) { o.after = after }
}

// Debouncer is trailing-edge only: Push never commits immediately, and a
// burst of pushes closer together than delay commits its last value once.
type Debouncer[T any] struct {
	delay  time.Duration
	after  AfterFunc
	commit func(T)

	mu         sync.Mutex
	timer      Timer
	pending    T
	hasPending bool
	// gen invalidates timers that fire after being replaced.
	gen     uint64
	stopped bool
}

func New[T any](delay time.Duration, commit func(T), opts ...Option) *Debouncer[T] {
	o := options{after: realAfterFunc}
	for _, opt := range opts {
		opt(&o)
	}
	if delay < 0 {
		delay = 0
	}
	return &Debouncer[T]{delay: delay, after: o.after, commit: commit}
}

// Push records v and restarts the quiet period.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = v
	d.hasPending = true
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.after(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.hasPending || d.stopped {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()
	d.commit(v)
}

// Flush commits the pending value now, if there is one.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.hasPending || d.stopped {
		d.mu.Unlock()
		return false
	}
	v := d.take()
	d.mu.Unlock()
	d.commit(v)
	return true
}

// Stop drops any pending value. Later pushes are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.take()
}

func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasPending
}

// take clears the pending value and its timer. d.mu must be held.
func (d *Debouncer[T]) take() T {
	var zero T
	v := d.pending
	d.pending = zero
	d.hasPending = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return v
}
