// Package testutil holds deterministic fixtures shared by package tests.
package testutil

import (
	"sync"
	"time"
)

// Epoch is the first timestamp produced by a fresh EventClock.
var Epoch = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// EventClock hands out monotonically increasing event timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type EventClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewEventClock returns a clock starting at Epoch that advances by step on
// every Next.
func NewEventClock(step time.Duration) *EventClock {
	return &EventClock{now: Epoch, step: step}
}

// Next returns the current timestamp and advances the clock.
func (c *EventClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Current returns the timestamp the next call to Next will return.
func (c *EventClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset rewinds the clock to Epoch.
func (c *EventClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Epoch
}
