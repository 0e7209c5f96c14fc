package schedule

import "sync"

// ElementPool is a bounded free-list of reusable handles. Unlike
// sync.Pool it never drops idle handles on its own and never holds more
// than its capacity.
type ElementPool[H any] struct {
	capacity int
	newFn    func() H
	reset    func(H)

	mu   sync.Mutex
	free []H
}

// NewElementPool returns a pool holding at most capacity idle handles.
// newFn builds a handle when the pool is empty; reset, if non-nil, is
// applied to each handle accepted by Release.
func NewElementPool[H any](capacity int, newFn func() H, reset func(H)) (*ElementPool[H], error) {
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if newFn == nil {
		return nil, ErrNilFunc
	}
	return &ElementPool[H]{
		capacity: capacity,
		newFn:    newFn,
		reset:    reset,
		free:     make([]H, 0, capacity),
	}, nil
}

// Acquire returns the most recently released handle, or a new one.
func (p *ElementPool[H]) Acquire() H {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		h := p.free[n-1]
		var zero H
		p.free[n-1] = zero
		p.free = p.free[:n-1]
		p.mu.Unlock()
		return h
	}
	p.mu.Unlock()

	return p.newFn()
}

// Release resets h and returns it to the pool. When the pool is full the
// handle is left untouched and false is returned.
func (p *ElementPool[H]) Release(h H) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) >= p.capacity {
		return false
	}
	if p.reset != nil {
		p.reset(h)
	}
	p.free = append(p.free, h)
	return true
}

// Len returns the number of idle handles.
func (p *ElementPool[H]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Capacity returns the maximum number of idle handles.
func (p *ElementPool[H]) Capacity() int { return p.capacity }
