package engine

import "sync/atomic"

// Clock hands out snapshot versions.
//
// Versions strictly increase for the lifetime of a Clock, across engine
// resets, so a consumer can order any two snapshots it has seen from the
// same engine.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// although the engine's single-writer design means only the writer calls
// Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next version and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last version handed out without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
