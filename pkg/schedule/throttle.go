package schedule

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Throttler runs fn at most once per limit. Calls arriving during the
// cool-down are dropped, not deferred. fn runs on the calling goroutine.
type Throttler[T any] struct {
	limiter *rate.Limiter
	fn      func(T)
	stopped atomic.Bool
}

// NewThrottler returns a Throttler for fn. The first Call always runs.
func NewThrottler[T any](limit time.Duration, fn func(T)) (*Throttler[T], error) {
	if err := checkInterval("throttle limit", limit); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, ErrNilFunc
	}
	return &Throttler[T]{
		limiter: rate.NewLimiter(rate.Every(limit), 1),
		fn:      fn,
	}, nil
}

// Call runs fn(v) if the cool-down has elapsed and reports whether it ran.
func (t *Throttler[T]) Call(v T) bool {
	if t.stopped.Load() || !t.limiter.Allow() {
		return false
	}
	t.fn(v)
	return true
}

// Stop makes every later Call a no-op.
func (t *Throttler[T]) Stop() {
	t.stopped.Store(true)
}
