// Package clock abstracts "now" so that event expiry and relative date
// buckets can be tested deterministically. Production code injects
// Real(); tests inject Fake().
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Fake returns a FakeClock frozen at initial.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a Clock whose time only moves through Set and Advance.
// Safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set moves the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// In returns a Clock that reports c's time in loc. Calendar-relative
// logic (today, this week) follows the clock's location.
func In(c Clock, loc *time.Location) Clock {
	return zonedClock{c: c, loc: loc}
}

type zonedClock struct {
	c   Clock
	loc *time.Location
}

func (z zonedClock) Now() time.Time { return z.c.Now().In(z.loc) }
