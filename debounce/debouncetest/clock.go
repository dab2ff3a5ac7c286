// Package debouncetest provides a manually advanced clock for tests that
// exercise debounced code.
package debouncetest

import (
	"sort"
	"sync"
	"time"

	"github.com/hsbacot/livesearch/debounce"
)

// Clock is a debounce.Clock whose time only moves when Advance is called.
// Callbacks run synchronously inside Advance, in due order.
type Clock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*timer
}

type timer struct {
	clock  *Clock
	at     time.Duration
	f      func()
	active bool
}

// NewClock returns a clock at time zero
func NewClock() *Clock {
	return &Clock{}
}

// AfterFunc implements debounce.Clock
func (c *Clock) AfterFunc(d time.Duration, f func()) debounce.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &timer{clock: c, at: c.now + d, f: f, active: true}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and runs every callback that became due
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	now := c.now

	var due []*timer
	remaining := c.timers[:0]
	for _, t := range c.timers {
		switch {
		case !t.active:
		case t.at <= now:
			t.active = false
			due = append(due, t)
		default:
			remaining = append(remaining, t)
		}
	}
	c.timers = remaining
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of scheduled callbacks that have not fired or
// been stopped
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if t.active {
			n++
		}
	}
	return n
}

// Stop implements debounce.Timer
func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	wasActive := t.active
	t.active = false
	return wasActive
}
