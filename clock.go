package main

import (
	"sync"
	"time"
)

/* ======================
   Clock
   ====================== */

// Clock abstracts wall time so the session scheduler can be driven by
// virtual time in tests and simulations.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return realClock{}
}

// ManualClock is a hand-advanced clock for deterministic tests.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start.UTC()}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}

// RunSession pumps the session scheduler from the real clock until stop is
// closed. The timers inside the session are all virtual; this loop only has
// to wake up often enough to keep them approximately on schedule, and the
// session tolerates drift between wakeups.
func RunSession(s *GameSession, stop <-chan struct{}) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.AdvanceTo(s.clock.Now())
		}
	}
}
