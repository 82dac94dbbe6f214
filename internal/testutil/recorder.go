package testutil

import (
	"github.com/roach88/rewind/internal/dom"
	"github.com/roach88/rewind/internal/recording"
)

// Recorder accumulates a recording, stamping each event from a
// DeterministicClock.
type Recorder struct {
	clock  *DeterministicClock
	events []recording.Event
}

// NewRecorder creates a recorder with a 1ms clock.
func NewRecorder() *Recorder {
	return &Recorder{clock: NewDeterministicClock()}
}

// Clock returns the recorder's clock, to model idle time.
func (r *Recorder) Clock() *DeterministicClock {
	return r.clock
}

// Add records an event in the top-level document and returns it.
func (r *Recorder) Add(t recording.Type, args ...any) recording.Event {
	return r.AddIn("", t, args...)
}

// AddIn records an event scoped to context.
func (r *Recorder) AddIn(context dom.NodeID, t recording.Type, args ...any) recording.Event {
	ev := recording.Event{Type: t, Args: args, Context: context, Timestamp: r.clock.Next()}
	r.events = append(r.events, ev)
	return ev
}

// Events returns a copy of the events recorded so far.
func (r *Recorder) Events() []recording.Event {
	out := make([]recording.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Recording wraps the events in a recording named name.
func (r *Recorder) Recording(id, name string) *recording.Recording {
	return &recording.Recording{ID: id, Name: name, Events: r.Events()}
}

// InitialDOM records an initial_dom event.
func (r *Recorder) InitialDOM(root *dom.SerializedNode) recording.Event {
	return r.Add(recording.TypeInitialDOM, root)
}

// Insert records a mutation_insert. next may be nil.
func (r *Recorder) Insert(parent, next any, n *dom.SerializedNode) recording.Event {
	return r.Add(recording.TypeMutationInsert, parent, next, n)
}

// Move records a mutation_move. next may be nil.
func (r *Recorder) Move(node, next, parent any) recording.Event {
	return r.Add(recording.TypeMutationMove, node, next, parent)
}

// Remove records a mutation_remove.
func (r *Recorder) Remove(node any) recording.Event {
	return r.Add(recording.TypeMutationRemove, node)
}

// CharacterData records a mutation_character_data.
func (r *Recorder) CharacterData(node any, data string) recording.Event {
	return r.Add(recording.TypeCharacterData, node, data)
}

// Attribute records a mutation_attribute. namespace and value may be nil.
func (r *Recorder) Attribute(node, namespace any, name string, value any) recording.Event {
	return r.Add(recording.TypeAttribute, node, namespace, name, value)
}
