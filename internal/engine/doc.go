// Package engine rebuilds the state of a recorded document from its event
// stream.
//
// ARCHITECTURE:
//
// Event Dispatch:
// Each event type is routed through a Registry, built once at package
// initialization, to a Handler plus the kinds of its positional arguments.
// Arguments are resolved before the handler runs:
//   - ArgRaw: passed through
//   - ArgNodeID: local id resolved in the event context
//   - ArgNodeRef: resolved and fetched for writing (clone-on-write)
//
// Routes flagged WholeEvent receive the raw event instead; they materialize
// serialized subtrees and need the context for every nested id.
// Event types without a route are ignored.
//
// Publishing:
// Apply runs a batch of events against the live node store and auxiliary
// state (cursor, touches, custom elements, viewport, screen) and publishes at
// most one Snapshot per batch. A batch that changed nothing returns the
// previous Snapshot pointer.
//
// CRITICAL PATTERNS:
//
// Log and Continue:
// A failing event never aborts its batch. The failure becomes a Diagnostic
// (UNKNOWN_NODE, BAD_ARGUMENT, INCONSISTENT_TREE, HANDLER_PANIC), is logged
// through slog, and the next event runs. The reconstructed tree may be
// partially wrong for that frame.
//
// Frozen Snapshots:
// Handlers write nodes only through the store's Mutable primitive and replace
// auxiliary slices instead of editing them, so anything reachable from a
// published Snapshot stays untouched.
package engine
