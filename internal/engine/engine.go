package engine

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/rewind/internal/dom"
	"github.com/roach88/rewind/internal/nodestore"
	"github.com/roach88/rewind/internal/recording"
)

// Engine rebuilds document state from recorded events.
//
// It owns the live node store and auxiliary state and publishes immutable
// snapshots. It is not safe for concurrent use: exactly one writer calls
// Apply and Reset. Snapshots it returns may be shared freely.
//
// INVARIANTS:
//   - Apply with no effective change returns the previous *Snapshot
//   - A node reachable from a returned Snapshot is never written again
//   - One failing event never aborts the rest of a batch
type Engine struct {
	store    *nodestore.Store
	registry Registry
	clock    *Clock
	logger   *slog.Logger

	aux      aux
	auxDirty bool

	current     *Snapshot
	applied     int
	diagnostics []Diagnostic
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for per-event diagnostics.
//
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRegistry replaces the event routes.
//
// Default: DefaultRegistry()
func WithRegistry(r Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithClock sets the clock snapshot versions are drawn from.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an engine with an empty store. The initial snapshot has no
// document.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry: defaultRegistry,
		clock:    NewClock(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.store = nodestore.New(nodestore.WithLogger(e.logger))
	e.current = &Snapshot{Version: e.clock.Current()}
	return e
}

// Apply runs events in order and returns the resulting snapshot.
//
// A failing event is recorded as a Diagnostic and logged; the batch goes on.
// When no event changed anything the previous snapshot is returned as is,
// so callers can detect a no-op with pointer comparison. Otherwise one new
// snapshot is built for the whole batch.
func (e *Engine) Apply(events []recording.Event) *Snapshot {
	for _, ev := range events {
		e.applyOne(ev)
		for _, issue := range e.store.Issues() {
			e.report(ev, CodeInconsistentTree, issue)
		}
		e.applied++
	}

	treeDirty := e.store.Commit()
	if !treeDirty && !e.auxDirty {
		return e.current
	}
	e.auxDirty = false
	e.current = &Snapshot{
		Version:        e.clock.Next(),
		Document:       e.store.Document(),
		Cursor:         e.aux.cursor,
		Touches:        e.aux.touches,
		CustomElements: e.aux.customElements,
		Viewport:       e.aux.viewport,
		Screen:         e.aux.screen,
	}
	e.logger.Debug("snapshot published",
		"version", e.current.Version,
		"events", len(events),
		"applied", e.applied,
		"nodes", e.store.Len(),
	)
	return e.current
}

// applyOne dispatches a single event. Handler panics are recovered into
// diagnostics.
func (e *Engine) applyOne(ev recording.Event) {
	route, ok := e.registry[ev.Type]
	if !ok {
		e.logger.Debug("ignoring event without handler", "type", ev.Type, "index", e.applied)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			e.report(ev, CodeHandlerPanic, fmt.Errorf("panic: %v", r))
		}
	}()

	args := Args{Event: ev, values: ev.Args, store: e.store}
	if !route.WholeEvent {
		var err error
		if args, err = e.resolve(ev, route.Args); err != nil {
			e.report(ev, classify(err), err)
			return
		}
	}
	if err := route.Handle(e, args); err != nil {
		e.report(ev, classify(err), err)
	}
}

func (e *Engine) report(ev recording.Event, code DiagnosticCode, err error) {
	d := Diagnostic{Index: e.applied, Type: ev.Type, Code: code, Err: err}
	e.diagnostics = append(e.diagnostics, d)
	e.logger.Warn("event not applied cleanly",
		"index", d.Index,
		"type", d.Type,
		"context", ev.Context,
		"code", d.Code,
		"error", err,
	)
}

// Reset destroys every node and all auxiliary state and publishes an empty
// snapshot.
func (e *Engine) Reset() *Snapshot {
	e.store.Reset()
	e.store.Commit()
	e.aux = aux{}
	e.auxDirty = false
	e.applied = 0
	e.diagnostics = nil
	e.current = &Snapshot{Version: e.clock.Next()}
	e.logger.Debug("engine reset", "version", e.current.Version)
	return e.current
}

// Snapshot returns the last published snapshot.
func (e *Engine) Snapshot() *Snapshot {
	return e.current
}

// Applied returns how many events were applied since the last reset.
func (e *Engine) Applied() int {
	return e.applied
}

// Diagnostics returns the diagnostics recorded since the last reset.
func (e *Engine) Diagnostics() []Diagnostic {
	return slices.Clone(e.diagnostics)
}

// Node returns the live node with the given id, failing with
// dom.ErrUnknownNode when there is none. The node must be treated as
// read-only.
func (e *Engine) Node(id dom.NodeID) (*dom.Node, error) {
	return e.store.Get(id)
}

// Len returns the number of live nodes.
func (e *Engine) Len() int {
	return e.store.Len()
}
