package testutil

import (
	"sync"
	"time"
)

// FakeClock is a manually driven clock for tests.
//
// It satisfies timer.Clock. Time only moves when the
// test calls Advance or Set, so every timestamp a test sees is known in
// advance.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// Epoch is the default starting time for FakeClock.
var Epoch = time.Date(2024, time.March, 9, 14, 0, 0, 0, time.UTC)

// NewFakeClock creates a clock frozen at start. A zero start means Epoch.
func NewFakeClock(start time.Time) *FakeClock {
	if start.IsZero() {
		start = Epoch
	}
	return &FakeClock{now: start.UTC()}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
// Negative durations move it backwards, which is how tests simulate skew.
func (c *FakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set jumps the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}
