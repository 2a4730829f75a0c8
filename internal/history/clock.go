package history

import (
	"sync"
	"time"
)

// Clock issues capture timestamps in Unix milliseconds. Every value is
// strictly greater than the previous one, even within the same millisecond.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewClock returns a Clock reading the wall clock.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockAt returns a Clock driven by now, for tests.
func NewClockAt(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the next timestamp.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.now().UnixMilli()
	if ts <= c.last {
		ts = c.last + 1
	}
	c.last = ts
	return ts
}

// Observe makes later timestamps exceed ts.
func (c *Clock) Observe(ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ts > c.last {
		c.last = ts
	}
}

// Time returns the wall clock reading without issuing a timestamp.
func (c *Clock) Time() time.Time {
	return c.now()
}
