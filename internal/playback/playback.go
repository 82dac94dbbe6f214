// Package playback positions an engine within a recording.
//
// Seeking forward applies only the events between the current position and
// the target. Seeking backward resets the engine and replays from the first
// event, since mutations cannot be undone.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/roach88/rewind/internal/engine"
	"github.com/roach88/rewind/internal/recording"
)

// DefaultChunk is the number of events Play applies per snapshot.
const DefaultChunk = 256

// Controller sequences a fixed event list against one engine. It is not safe
// for concurrent use.
type Controller struct {
	events []recording.Event
	engine *engine.Engine
	logger *slog.Logger

	// position is the number of events applied since the last reset.
	position int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for seek tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithEngine makes the controller drive e instead of a new engine. e must
// be freshly created or reset.
func WithEngine(e *engine.Engine) Option {
	return func(c *Controller) {
		c.engine = e
	}
}

// New creates a controller at position 0. Events are stably sorted by
// timestamp once, here; the caller's slice is not modified.
func New(events []recording.Event, opts ...Option) *Controller {
	sorted := slices.Clone(events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	c := &Controller{
		events: sorted,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = engine.New(engine.WithLogger(c.logger))
	}
	return c
}

// Len returns the number of events in the recording.
func (c *Controller) Len() int {
	return len(c.events)
}

// Position returns how many events have been applied.
func (c *Controller) Position() int {
	return c.position
}

// Events returns the events in playback order.
func (c *Controller) Events() []recording.Event {
	return slices.Clone(c.events)
}

// Engine returns the driven engine, for diagnostics and node lookups.
func (c *Controller) Engine() *engine.Engine {
	return c.engine
}

// Snapshot returns the engine's current snapshot.
func (c *Controller) Snapshot() *engine.Snapshot {
	return c.engine.Snapshot()
}

// Seek moves to position k, so that exactly events [0, k) are applied, and
// returns the resulting snapshot.
//
// Forward seeks apply [Position(), k). Backward seeks reset the engine and
// apply [0, k).
func (c *Controller) Seek(k int) (*engine.Snapshot, error) {
	if k < 0 || k > len(c.events) {
		return nil, fmt.Errorf("seek %d: out of range [0, %d]", k, len(c.events))
	}
	if k < c.position {
		c.logger.Debug("seek backward, replaying from start", "from", c.position, "to", k)
		c.engine.Reset()
		c.position = 0
	}
	snap := c.engine.Apply(c.events[c.position:k])
	c.position = k
	return snap, nil
}

// SeekTime seeks to just after the last event with a timestamp at or before
// ts.
func (c *Controller) SeekTime(ts int64) (*engine.Snapshot, error) {
	return c.Seek(c.IndexAt(ts))
}

// IndexAt returns the number of events with a timestamp at or before ts.
func (c *Controller) IndexAt(ts int64) int {
	return sort.Search(len(c.events), func(i int) bool {
		return c.events[i].Timestamp > ts
	})
}

// Play moves forward to position k in chunks of at most chunk events,
// yielding the snapshot after each chunk. It stops early, returning the
// context error, when ctx is done between chunks, and returns nil when
// yield returns false. A k before the current position first seeks back to
// 0.
func (c *Controller) Play(ctx context.Context, k, chunk int, yield func(*engine.Snapshot) bool) error {
	if k < 0 || k > len(c.events) {
		return fmt.Errorf("play to %d: out of range [0, %d]", k, len(c.events))
	}
	if chunk <= 0 {
		chunk = DefaultChunk
	}
	if k < c.position {
		if _, err := c.Seek(0); err != nil {
			return err
		}
	}
	for c.position < k {
		if err := ctx.Err(); err != nil {
			return err
		}
		snap, err := c.Seek(min(c.position+chunk, k))
		if err != nil {
			return err
		}
		if !yield(snap) {
			return nil
		}
	}
	return nil
}
