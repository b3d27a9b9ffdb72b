// Package timer measures frame and shot durations for display and for
// stamping shot times onto recorded actions.
//
// Timers never touch scoring state. They read a Clock so tests can drive
// time by hand.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultTickInterval is how often Run refreshes the display.
const DefaultTickInterval = 100 * time.Millisecond

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real clock.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FrameTimer tracks the running time of a frame and of the current shot,
// excluding time spent paused.
//
// Thread-safety: all methods are safe for concurrent use. The tick loop in
// Run reads the timer while the session goroutine drives it.
type FrameTimer struct {
	mu    sync.Mutex
	clock Clock

	started    bool
	frameStart time.Time
	offset     time.Duration

	paused      bool
	pauseStart  time.Time
	pausedTotal time.Duration

	shotRunning bool
	shotStart   time.Time
}

// New creates a stopped timer. A nil clock means SystemClock.
func New(clock Clock) *FrameTimer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &FrameTimer{clock: clock}
}

// StartFrame starts timing a new frame from zero.
func (t *FrameTimer) StartFrame() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
	t.started = true
	t.frameStart = t.clock.Now()
}

// Restore starts timing a frame that already ran for elapsed, as when a
// saved match is resumed. The timer comes back paused.
func (t *FrameTimer) Restore(elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
	now := t.clock.Now()
	t.started = true
	t.frameStart = now
	t.offset = max(0, elapsed)
	t.paused = true
	t.pauseStart = now
}

// StartShot starts the shot clock. Ignored while paused.
func (t *FrameTimer) StartShot() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused {
		return
	}
	t.shotRunning = true
	t.shotStart = t.clock.Now()
}

// EndShot stops the shot clock and returns how long the shot took. It
// returns 0 when no shot was being timed or the timer is paused.
func (t *FrameTimer) EndShot() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.shotRunning || t.paused {
		return 0
	}
	t.shotRunning = false
	return clamp(t.clock.Now().Sub(t.shotStart))
}

// Pause freezes both clocks.
func (t *FrameTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started || t.paused {
		return
	}
	t.paused = true
	t.pauseStart = t.clock.Now()
}

// Resume unfreezes the clocks. A shot that was being timed restarts from
// zero.
func (t *FrameTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.paused {
		return
	}
	now := t.clock.Now()
	t.pausedTotal += clamp(now.Sub(t.pauseStart))
	t.paused = false
	if t.shotRunning {
		t.shotStart = now
	}
}

// Paused reports whether the timer is frozen.
func (t *FrameTimer) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// Started reports whether a frame is being timed.
func (t *FrameTimer) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// FrameElapsed returns the frame's running time, never negative.
func (t *FrameTimer) FrameElapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frameElapsedLocked()
}

func (t *FrameTimer) frameElapsedLocked() time.Duration {
	if !t.started {
		return 0
	}
	now := t.clock.Now()
	elapsed := now.Sub(t.frameStart) - t.pausedTotal + t.offset
	if t.paused {
		elapsed -= now.Sub(t.pauseStart)
	}
	return clamp(elapsed)
}

// ShotElapsed returns the current shot's running time, 0 while paused.
func (t *FrameTimer) ShotElapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.shotRunning || t.paused {
		return 0
	}
	return clamp(t.clock.Now().Sub(t.shotStart))
}

// EndFrame stops the timer and returns the frame's final running time.
func (t *FrameTimer) EndFrame() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.frameElapsedLocked()
	t.resetLocked()
	return d
}

// Reset stops the timer and clears all state.
func (t *FrameTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
}

func (t *FrameTimer) resetLocked() {
	t.started = false
	t.frameStart = time.Time{}
	t.offset = 0
	t.paused = false
	t.pauseStart = time.Time{}
	t.pausedTotal = 0
	t.shotRunning = false
	t.shotStart = time.Time{}
}

// Run calls onTick every interval with the frame and shot elapsed times
// until ctx is done. Ticks are skipped while the timer is stopped or
// paused. Run only reads the timer.
func (t *FrameTimer) Run(ctx context.Context, interval time.Duration, onTick func(frame, shot time.Duration)) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !t.Started() || t.Paused() {
				continue
			}
			onTick(t.FrameElapsed(), t.ShotElapsed())
		}
	}
}

func clamp(d time.Duration) time.Duration {
	return max(0, d)
}

// FormatDuration renders d as m:ss, or h:mm:ss from one hour up.
func FormatDuration(d time.Duration) string {
	total := int64(clamp(d) / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
