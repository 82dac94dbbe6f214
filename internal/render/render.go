// Package render projects snapshots for display. It reads snapshots only;
// nothing here writes to a node.
package render

import (
	"iter"

	"github.com/roach88/rewind/internal/dom"
	"github.com/roach88/rewind/internal/engine"
)

// Slot is how a node hangs off its parent.
type Slot int

const (
	SlotRoot Slot = iota
	SlotChild
	SlotShadowRoot
	SlotContentDocument
)

// Projector receives nodes in document order. Returning false skips the
// node's children, shadow root and content document.
type Projector interface {
	Project(n *dom.Node, depth int, slot Slot) bool
}

// ProjectorFunc adapts a function to Projector.
type ProjectorFunc func(n *dom.Node, depth int, slot Slot) bool

// Project calls f.
func (f ProjectorFunc) Project(n *dom.Node, depth int, slot Slot) bool {
	return f(n, depth, slot)
}

type frame struct {
	node  *dom.Node
	depth int
	slot  Slot
}

// Walk feeds the document of snap to p, pre-order, with an explicit stack.
func Walk(snap *engine.Snapshot, p Projector) {
	if snap == nil || snap.Document == nil {
		return
	}
	stack := []frame{{node: snap.Document, slot: SlotRoot}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !p.Project(f.node, f.depth, f.slot) {
			continue
		}
		n := f.node
		if n.ContentDocument != nil {
			stack = append(stack, frame{node: n.ContentDocument, depth: f.depth + 1, slot: SlotContentDocument})
		}
		if n.ShadowRoot != nil {
			stack = append(stack, frame{node: n.ShadowRoot, depth: f.depth + 1, slot: SlotShadowRoot})
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: n.Children[i], depth: f.depth + 1, slot: SlotChild})
		}
	}
}

// Changed yields the nodes of next that are not shared with prev: new
// nodes, and nodes rewritten since prev on the path to a change. Every node
// of prev is indexed first, so a shared subtree is recognized wherever it
// now hangs, including under a moved node; next is not descended into
// below a shared node.
func Changed(prev, next *engine.Snapshot) iter.Seq[*dom.Node] {
	return func(yield func(*dom.Node) bool) {
		if next == nil || next.Document == nil {
			return
		}
		shared := make(map[*dom.Node]struct{})
		if prev != nil {
			for n := range dom.Subtree(prev.Document) {
				shared[n] = struct{}{}
			}
		}
		stack := []*dom.Node{next.Document}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, ok := shared[n]; ok {
				continue
			}
			if !yield(n) {
				return
			}
			if n.ContentDocument != nil {
				stack = append(stack, n.ContentDocument)
			}
			if n.ShadowRoot != nil {
				stack = append(stack, n.ShadowRoot)
			}
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, n.Children[i])
			}
		}
	}
}
