package framework

import (
	"sync"
	"time"
)

// SystemClock is the Clock backed by the time package.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Time() time.Time         { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// ManualClock is a Clock only advanced explicitly.
// Sleep advances the clock instead of blocking.
type ManualClock struct {
	now  time.Time
	lock sync.Mutex

	// OnSleep is invoked after each Sleep with the new time.
	OnSleep func(time.Time)
}

// NewManualClock creates a ManualClock starting at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

// Time implements TimeSource.
func (c *ManualClock) Time() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// Advance moves the clock forward and returns the new time.
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.lock.Lock()
	c.now = c.now.Add(d)
	t := c.now
	c.lock.Unlock()
	return t
}

// Sleep implements Clock.
func (c *ManualClock) Sleep(d time.Duration) {
	t := c.Advance(d)
	if fn := c.OnSleep; fn != nil {
		fn(t)
	}
}
