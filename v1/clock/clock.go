// Package clock provides the time source used to measure elapsed wall time
// during lock acquisition. The system clock relies on Go's monotonic reading,
// so measurements are immune to wall-clock adjustments. A manual clock is
// available for deterministic tests.
package clock

import (
	"sync"
	"time"
)

// Clock measures the passage of time.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time
	// Since returns the time elapsed since t.
	Since(t time.Time) time.Duration
}

type systemClock struct{}

func (systemClock) Now() time.Time                  { return time.Now() }
func (systemClock) Since(t time.Time) time.Duration { return time.Since(t) }

// System returns a Clock backed by the runtime monotonic clock.
func System() Clock { return systemClock{} }

// Manual is a Clock that only moves when Advance is called.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a Manual clock starting at the given instant.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now implements Clock.Now.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Since implements Clock.Since.
func (m *Manual) Since(t time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now.Sub(t)
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
