// Package util provides small reusable helpers.
package util

import (
	"sync"
	"time"
)

// Debouncer fires on its channel after a fixed quiet period with no Reset
// calls. The capture sink uses it to zero the published volume once
// microphone frames stop arriving.
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	stopped  bool
}

// NewDebouncer creates a debouncer that fires after the given duration.
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		timer:    time.NewTimer(duration),
	}
}

// C returns the channel that fires when the quiet period elapses.
func (d *Debouncer) C() <-chan time.Time {
	return d.timer.C
}

// Reset restarts the quiet period. No-op after Stop.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.drainStop()
	d.timer.Reset(d.duration)
}

// Stop permanently disarms the debouncer. Safe to call more than once.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	d.drainStop()
}

// drainStop stops the timer and drains a pending fire so a later Reset
// cannot observe a stale tick. Caller holds d.mu.
func (d *Debouncer) drainStop() {
	if !d.timer.Stop() {
		select {
		case <-d.timer.C:
		default:
		}
	}
}
