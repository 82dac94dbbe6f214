package nodestore

import (
	"fmt"

	"github.com/roach88/rewind/internal/dom"
)

type slot int

const (
	slotChild slot = iota
	slotShadowRoot
	slotContentDocument
)

// pending is one serialized node waiting to be registered.
type pending struct {
	src     *dom.SerializedNode
	context dom.NodeID
	parent  *dom.Node
	slot    slot
}

// Materialize registers the serialized subtree rooted at sn, resolving every
// local id in context, and returns the new root node. The root's ParentID is
// set to parentID but it is not linked into the parent; callers do that.
//
// Shadow roots share their host's context. A content document and all of its
// descendants use the global id of the frame element hosting it as context.
//
// Nodes are created breadth-first from an explicit queue, so siblings are
// appended in document order and depth is unbounded.
func (s *Store) Materialize(sn *dom.SerializedNode, context, parentID dom.NodeID) (*dom.Node, error) {
	if sn == nil {
		return nil, fmt.Errorf("materialize: nil serialized node")
	}
	root, err := s.register(sn, context)
	if err != nil {
		return nil, fmt.Errorf("materialize: %w", err)
	}
	root.ParentID = parentID

	queue := s.enqueueOwned(nil, sn, root)
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		n, err := s.register(p.src, p.context)
		if err != nil {
			// A malformed or duplicate descendant is skipped; the rest of
			// the subtree still lands.
			s.inconsistent("materialize under %s: %v", p.parent.ID, err)
			continue
		}
		n.ParentID = p.parent.ID
		switch p.slot {
		case slotChild:
			p.parent.Children = append(p.parent.Children, n)
		case slotShadowRoot:
			p.parent.ShadowRoot = n
		case slotContentDocument:
			p.parent.ContentDocument = n
		}
		queue = s.enqueueOwned(queue, p.src, n)
	}
	return root, nil
}

// enqueueOwned queues the serialized children, shadow root and content
// document of src, to be attached to n.
func (s *Store) enqueueOwned(queue []pending, src *dom.SerializedNode, n *dom.Node) []pending {
	for _, child := range src.Children {
		if child == nil {
			continue
		}
		queue = append(queue, pending{src: child, context: n.Context, parent: n, slot: slotChild})
	}
	if src.ShadowRoot != nil {
		queue = append(queue, pending{src: src.ShadowRoot, context: n.Context, parent: n, slot: slotShadowRoot})
	}
	if src.ContentDocument != nil {
		queue = append(queue, pending{src: src.ContentDocument, context: n.ID, parent: n, slot: slotContentDocument})
	}
	return queue
}

// register converts one serialized node (without its owned subtrees) and
// stores it as private to the current batch. An id that is already live is
// rejected; callers evict first.
func (s *Store) register(sn *dom.SerializedNode, context dom.NodeID) (*dom.Node, error) {
	local, err := sn.Local()
	if err != nil {
		return nil, err
	}
	n := &dom.Node{
		ID:            dom.Resolve(local, context),
		Context:       context,
		Kind:          sn.Kind,
		LocalName:     sn.LocalName,
		Namespace:     sn.Namespace,
		Data:          sn.Data,
		QualifiedName: sn.QualifiedName,
		PublicID:      sn.PublicID,
		SystemID:      sn.SystemID,
		Value:         sn.Value,
		Checked:       sn.Checked,
		SelectedIndex: sn.SelectedIndex,
		ScrollTop:     sn.ScrollTop,
		ScrollLeft:    sn.ScrollLeft,
		Paused:        sn.Paused,
	}
	// Duplicate (namespace, name) pairs: last value wins, first position kept.
	for _, a := range sn.Attributes {
		n.SetAttr(a.Namespace, a.Name, a.Value)
	}
	if _, ok := s.nodes[n.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}
	s.nodes[n.ID] = n
	s.cloned[n.ID] = struct{}{}
	s.dirty = true
	return n, nil
}

// LiveIDs returns the ids of the serialized subtree rooted at sn that are
// already live, in the order Materialize would register them. Nodes
// Materialize would skip are skipped here too.
func (s *Store) LiveIDs(sn *dom.SerializedNode, context dom.NodeID) []dom.NodeID {
	type item struct {
		src     *dom.SerializedNode
		context dom.NodeID
	}
	if sn == nil {
		return nil
	}
	var live []dom.NodeID
	queue := []item{{src: sn, context: context}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		local, err := it.src.Local()
		if err != nil {
			continue
		}
		id := dom.Resolve(local, it.context)
		if s.Has(id) {
			live = append(live, id)
		}
		for _, child := range it.src.Children {
			if child != nil {
				queue = append(queue, item{src: child, context: it.context})
			}
		}
		if it.src.ShadowRoot != nil {
			queue = append(queue, item{src: it.src.ShadowRoot, context: it.context})
		}
		if it.src.ContentDocument != nil {
			queue = append(queue, item{src: it.src.ContentDocument, context: id})
		}
	}
	return live
}
