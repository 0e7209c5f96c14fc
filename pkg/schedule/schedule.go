// Package schedule bounds how often and how much render work runs per user
// interaction: a debouncer and throttler for viewport events, a batch
// updater that coalesces bursts into one call, and a bounded free-list of
// reusable render handles.
//
// Each helper is meant to be owned by one logical event source. The types
// lock internally so timer callbacks never race with callers, but they do
// not order concurrent producers; callers feeding one instance from several
// goroutines must serialize those calls themselves.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidInterval is returned for a non-positive wait, limit or delay.
	ErrInvalidInterval = errors.New("schedule: interval must be positive")
	// ErrInvalidCapacity is returned for a negative pool capacity.
	ErrInvalidCapacity = errors.New("schedule: capacity must not be negative")
	// ErrNilFunc is returned when a required callback is nil.
	ErrNilFunc = errors.New("schedule: callback must not be nil")
)

func checkInterval(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s %v: %w", name, d, ErrInvalidInterval)
	}
	return nil
}
