package schedule

import (
	"sync"
	"time"
)

// Debouncer runs fn once wait has elapsed since the most recent Call. A
// Call while another is pending replaces its argument and restarts the
// wait; superseded arguments are discarded, not queued.
type Debouncer[T any] struct {
	wait time.Duration
	fn   func(T)

	mu         sync.Mutex
	timer      *time.Timer
	pending    T
	hasPending bool
	// gen invalidates timers that fire after being superseded.
	gen     uint64
	stopped bool
}

// NewDebouncer returns a Debouncer for fn.
func NewDebouncer[T any](wait time.Duration, fn func(T)) (*Debouncer[T], error) {
	if err := checkInterval("debounce wait", wait); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, ErrNilFunc
	}
	return &Debouncer[T]{wait: wait, fn: fn}, nil
}

// Call schedules fn(v), cancelling any pending call. It is a no-op after
// Stop.
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = v
	d.hasPending = true
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.hasPending {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()

	d.fn(v)
}

// take clears the pending call and returns its argument. d.mu must be held.
func (d *Debouncer[T]) take() T {
	v := d.pending
	var zero T
	d.pending = zero
	d.hasPending = false
	d.timer = nil
	d.gen++
	return v
}

// Flush runs a pending call immediately on the calling goroutine and
// reports whether there was one.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.hasPending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	v := d.take()
	d.mu.Unlock()

	d.fn(v)
	return true
}

// Pending reports whether a call is waiting to run.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasPending
}

// Stop cancels any pending call and disables the Debouncer.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.take()
	d.stopped = true
}
