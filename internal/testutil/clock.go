package testutil

import "sync"

// DeterministicClock hands out recording timestamps for tests.
//
// Timestamps advance by a fixed step, so the same sequence of recorder
// calls always yields the same timeline. Reset rewinds it for test reuse.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	now  int64
	step int64
}

// NewDeterministicClock creates a clock at 0 that advances 1ms per tick.
//
// The first call to Next() returns 1.
func NewDeterministicClock() *DeterministicClock {
	return NewSteppedClock(1)
}

// NewSteppedClock creates a clock at 0 that advances step ms per tick.
func NewSteppedClock(step int64) *DeterministicClock {
	if step <= 0 {
		step = 1
	}
	return &DeterministicClock{step: step}
}

// Next advances the clock by one step and returns the new timestamp.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += c.step
	return c.now
}

// Current returns the current timestamp without advancing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d ms without producing a tick, to
// model idle time between recorded events.
func (c *DeterministicClock) Advance(d int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// Reset rewinds the clock to 0.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = 0
}
