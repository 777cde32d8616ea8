package textutil

import (
	"sync"
	"time"
)

// Debouncer delays a callback until calls stop arriving for the wait period.
// Only the arguments of the last call within a burst are delivered.
type Debouncer[T any] struct {
	wait time.Duration
	fn   func(T)

	mu    sync.Mutex
	timer *time.Timer
}

// Debounce wraps fn so bursts of Trigger calls collapse into one invocation.
func Debounce[T any](fn func(T), wait time.Duration) *Debouncer[T] {
	return &Debouncer[T]{wait: wait, fn: fn}
}

// Trigger schedules fn(value), replacing any pending invocation.
func (d *Debouncer[T]) Trigger(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() { d.fn(value) })
}

// Stop cancels a pending invocation. It reports whether one was pending.
func (d *Debouncer[T]) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	return stopped
}
