package engine

import (
	"slices"

	"github.com/roach88/rewind/internal/dom"
)

// Snapshot is one published, immutable version of the reconstructed state.
//
// Nothing reachable from a Snapshot is modified after it is returned by the
// engine: later changes clone what they touch. Snapshots may be read from any
// goroutine without locking, and two snapshots can be compared subtree by
// subtree with pointer equality.
type Snapshot struct {
	// Version increases with every published snapshot, resets included.
	Version int64

	// Document is the top-level document root, or nil before the first
	// initial document.
	Document *dom.Node

	Cursor         Cursor
	Touches        []Touch
	CustomElements []string
	Viewport       *Size
	Screen         *Size
}

// Cursor is the pointer state. Every field is optional and set
// independently by the pointer event that concerns it.
type Cursor struct {
	X       *float64
	Y       *float64
	Pressed *bool
	Hover   dom.NodeID
}

// Touch is one active finger.
type Touch struct {
	ID int64
	X  float64
	Y  float64
}

// Size is a width and height in CSS pixels.
type Size struct {
	Width  float64
	Height float64
}

// HasCustomElement reports whether name was registered.
func (s *Snapshot) HasCustomElement(name string) bool {
	return slices.Contains(s.CustomElements, name)
}

// Touch returns the active touch for finger id.
func (s *Snapshot) Touch(id int64) (Touch, bool) {
	i := slices.IndexFunc(s.Touches, func(t Touch) bool { return t.ID == id })
	if i < 0 {
		return Touch{}, false
	}
	return s.Touches[i], true
}

// Node returns the node with the given id reachable from the document root,
// or nil. It walks the tree; callers holding an Engine should prefer
// Engine.Node.
func (s *Snapshot) Node(id dom.NodeID) *dom.Node {
	return dom.Find(s.Document, id)
}

// aux is the live auxiliary state. Handlers replace fields and slices
// wholesale; a published slice is never appended to or edited in place.
type aux struct {
	cursor         Cursor
	touches        []Touch
	customElements []string
	viewport       *Size
	screen         *Size
}
