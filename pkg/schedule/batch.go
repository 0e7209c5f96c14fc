package schedule

import (
	"sync"
	"time"
)

// BatchUpdater accumulates items and hands the whole batch to fn once
// delay has passed without a new Add, or immediately on Flush. fn never
// receives an empty batch.
type BatchUpdater[T any] struct {
	delay time.Duration
	fn    func([]T)

	mu      sync.Mutex
	items   []T
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// NewBatchUpdater returns a BatchUpdater flushing to fn.
func NewBatchUpdater[T any](delay time.Duration, fn func([]T)) (*BatchUpdater[T], error) {
	if err := checkInterval("batch delay", delay); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, ErrNilFunc
	}
	return &BatchUpdater[T]{delay: delay, fn: fn}, nil
}

// Add appends item and restarts the inactivity timer. It is a no-op after
// Stop.
func (b *BatchUpdater[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return
	}
	b.items = append(b.items, item)
	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	b.timer = time.AfterFunc(b.delay, func() { b.fire(gen) })
}

func (b *BatchUpdater[T]) fire(gen uint64) {
	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return
	}
	batch := b.take()
	b.mu.Unlock()

	if len(batch) > 0 {
		b.fn(batch)
	}
}

// take detaches the accumulated batch. b.mu must be held.
func (b *BatchUpdater[T]) take() []T {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
	batch := b.items
	b.items = nil
	return batch
}

// Flush delivers the accumulated batch now, on the calling goroutine, and
// returns its size.
func (b *BatchUpdater[T]) Flush() int {
	b.mu.Lock()
	batch := b.take()
	b.mu.Unlock()

	if len(batch) > 0 {
		b.fn(batch)
	}
	return len(batch)
}

// Len returns the number of items waiting to be flushed.
func (b *BatchUpdater[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Stop discards pending items and disables the BatchUpdater.
func (b *BatchUpdater[T]) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.take()
	b.stopped = true
}
