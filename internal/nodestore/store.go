// Package nodestore owns the table of live nodes and the clone-on-write
// discipline that keeps published snapshots frozen.
//
// # Structural sharing
//
// Every write goes through Mutable. The first write to a node in a batch
// clones it, stores the clone, and walks up the ParentID chain cloning each
// ancestor and relinking the fresh child pointer, until it reaches the
// document root or an ancestor already cloned in this batch. Later writes
// to the same node, or to any node below an already dirtied ancestor, cost
// nothing extra. Commit ends the batch.
//
// Nodes not on a dirtied path keep their identity, so a consumer holding
// two snapshots can skip any subtree whose pointer did not change.
//
// # Single writer
//
// A Store is not safe for concurrent use. Nodes returned by Get and nodes
// reachable from Document may be read concurrently once the batch that
// produced them has been committed.
package nodestore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/rewind/internal/dom"
)

var (
	// ErrInvalidAttach is returned when an attach would break the tree.
	ErrInvalidAttach = errors.New("invalid attach")

	// ErrDuplicateID is returned when materializing a node whose id is
	// already live.
	ErrDuplicateID = errors.New("duplicate node id")
)

// Store is the live node table.
type Store struct {
	nodes    map[dom.NodeID]*dom.Node
	document *dom.Node

	// cloned holds nodes that are private to the current batch: clones
	// made by Mutable and nodes created by Materialize.
	cloned map[dom.NodeID]struct{}
	dirty  bool

	issues []error
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for structural diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		nodes:  make(map[dom.NodeID]*dom.Node),
		cloned: make(map[dom.NodeID]struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current version of id without marking it dirty.
// The returned node must be treated as read-only.
func (s *Store) Get(id dom.NodeID) (*dom.Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, dom.UnknownNodeError(id)
	}
	return n, nil
}

// Has reports whether id is live.
func (s *Store) Has(id dom.NodeID) bool {
	_, ok := s.nodes[id]
	return ok
}

// Len returns the number of live nodes.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Document returns the current top-level document root, or nil.
func (s *Store) Document() *dom.Node {
	return s.document
}

// SetDocument installs n as the top-level document root.
func (s *Store) SetDocument(n *dom.Node) {
	if n != nil {
		n.ParentID = ""
	}
	s.document = n
	s.dirty = true
}

// Dirty reports whether anything was written since the last Commit.
func (s *Store) Dirty() bool {
	return s.dirty
}

// Commit ends the current batch: every node becomes shared again and the
// next write to it will clone. It reports whether the batch wrote anything.
func (s *Store) Commit() bool {
	dirty := s.dirty
	clear(s.cloned)
	s.dirty = false
	return dirty
}

// Reset drops every node and the document root.
func (s *Store) Reset() {
	s.nodes = make(map[dom.NodeID]*dom.Node)
	s.document = nil
	clear(s.cloned)
	s.issues = nil
	s.dirty = true
}

// Issues returns and clears the structural inconsistencies recorded since
// the previous call.
func (s *Store) Issues() []error {
	issues := s.issues
	s.issues = nil
	return issues
}

// Mutable returns a version of id that the caller may edit in place. The
// first call for a node in a batch clones it and relinks all its ancestors.
func (s *Store) Mutable(id dom.NodeID) (*dom.Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, dom.UnknownNodeError(id)
	}
	if s.isCloned(id) {
		return n, nil
	}

	target := s.cloneInPlace(n)
	child := target
	for {
		if child.ParentID == "" {
			if s.document != nil && s.document.ID == child.ID {
				s.document = child
			} else {
				s.inconsistent("node %s has no parent and is not the document root", child.ID)
			}
			break
		}
		parent, ok := s.nodes[child.ParentID]
		if !ok {
			s.inconsistent("node %s points to missing parent %s", child.ID, child.ParentID)
			break
		}
		stop := s.isCloned(parent.ID)
		if !stop {
			parent = s.cloneInPlace(parent)
		}
		s.relink(parent, child)
		if stop {
			break
		}
		child = parent
	}
	return target, nil
}

// Attach makes child the last child of parent, or inserts it before
// nextSibling when nextSibling is one of parent's children. A child that is
// still attached elsewhere is detached first. Inserting a node before itself
// leaves it where it is.
func (s *Store) Attach(child *dom.Node, parentID, nextSibling dom.NodeID) error {
	if !s.isCloned(child.ID) {
		return fmt.Errorf("%w: %s is not mutable in this batch", ErrInvalidAttach, child.ID)
	}
	if err := s.checkAttach(child.ID, parentID); err != nil {
		return err
	}
	if nextSibling == child.ID {
		nextSibling = s.followingSibling(child)
	}
	if err := s.Detach(child); err != nil {
		return err
	}
	parent, err := s.Mutable(parentID)
	if err != nil {
		return fmt.Errorf("attach %s: %w", child.ID, err)
	}
	child.ParentID = parent.ID

	index := -1
	if nextSibling != "" {
		index = parent.ChildIndex(nextSibling)
	}
	if index < 0 {
		parent.Children = append(parent.Children, child)
		return nil
	}
	children := make([]*dom.Node, 0, len(parent.Children)+1)
	children = append(children, parent.Children[:index]...)
	children = append(children, child)
	parent.Children = append(children, parent.Children[index:]...)
	return nil
}

// Move attaches the live node id under parentID the way Attach does. A
// rejected move leaves every node untouched.
func (s *Store) Move(id, parentID, nextSibling dom.NodeID) error {
	if err := s.checkAttach(id, parentID); err != nil {
		return err
	}
	child, err := s.Mutable(id)
	if err != nil {
		return err
	}
	return s.Attach(child, parentID, nextSibling)
}

func (s *Store) checkAttach(id, parentID dom.NodeID) error {
	if !s.Has(parentID) {
		return fmt.Errorf("attach %s: %w", id, dom.UnknownNodeError(parentID))
	}
	if s.isAncestor(id, parentID) {
		return fmt.Errorf("%w: %s under %s would create a cycle", ErrInvalidAttach, id, parentID)
	}
	return nil
}

// Owns reports whether id is ancestor or lies anywhere beneath it,
// following shadow roots and content documents up to their hosts.
func (s *Store) Owns(ancestor, id dom.NodeID) bool {
	return s.isAncestor(ancestor, id)
}

// followingSibling returns the id of the node after child in its current
// parent, or "".
func (s *Store) followingSibling(child *dom.Node) dom.NodeID {
	parent, ok := s.nodes[child.ParentID]
	if !ok {
		return ""
	}
	if i := parent.ChildIndex(child.ID); i >= 0 && i+1 < len(parent.Children) {
		return parent.Children[i+1].ID
	}
	return ""
}

// Detach unlinks child from its parent: from the parent's children, or from
// the shadow root / content document slot it occupies. A detached document
// root leaves the store without a document.
func (s *Store) Detach(child *dom.Node) error {
	if child.ParentID == "" {
		if s.document != nil && s.document.ID == child.ID {
			s.document = nil
			s.dirty = true
		}
		return nil
	}
	parent, err := s.Mutable(child.ParentID)
	if err != nil {
		// The parent vanished underneath us; the child is detached anyway.
		s.inconsistent("detach %s: %v", child.ID, err)
		child.ParentID = ""
		return nil
	}
	i := parent.ChildIndex(child.ID)
	switch {
	case i >= 0:
		children := make([]*dom.Node, 0, len(parent.Children)-1)
		children = append(children, parent.Children[:i]...)
		parent.Children = append(children, parent.Children[i+1:]...)
	case parent.ShadowRoot != nil && parent.ShadowRoot.ID == child.ID:
		parent.ShadowRoot = nil
	case parent.ContentDocument != nil && parent.ContentDocument.ID == child.ID:
		parent.ContentDocument = nil
	default:
		s.inconsistent("detach %s: parent %s does not reference it", child.ID, parent.ID)
	}
	child.ParentID = ""
	return nil
}

// DeleteSubtree removes id and every node it owns from the table and
// returns how many nodes were removed. The node is not detached from its
// parent; callers detach first.
func (s *Store) DeleteSubtree(id dom.NodeID) (int, error) {
	root, ok := s.nodes[id]
	if !ok {
		return 0, dom.UnknownNodeError(id)
	}
	removed := 0
	for n := range dom.Subtree(root) {
		// Only the registered version of an id goes; a stale object that
		// shares its id must not take a live node with it.
		if live, ok := s.nodes[n.ID]; !ok || live != n {
			continue
		}
		delete(s.nodes, n.ID)
		delete(s.cloned, n.ID)
		removed++
	}
	if s.document != nil && s.document.ID == id {
		s.document = nil
	}
	s.dirty = true
	return removed, nil
}

// ClearContext removes every node resolved inside context, including nodes
// of frames nested within it. An empty context clears the whole table.
func (s *Store) ClearContext(context dom.NodeID) int {
	if context == "" {
		removed := len(s.nodes)
		s.nodes = make(map[dom.NodeID]*dom.Node)
		s.document = nil
		clear(s.cloned)
		s.dirty = true
		return removed
	}
	removed := 0
	for id := range s.nodes {
		if id.InContext(context) {
			delete(s.nodes, id)
			delete(s.cloned, id)
			removed++
		}
	}
	if removed > 0 {
		s.dirty = true
	}
	return removed
}

// isAncestor reports whether ancestor is id or one of its ancestors.
func (s *Store) isAncestor(ancestor, id dom.NodeID) bool {
	seen := 0
	for id != "" && seen <= len(s.nodes) {
		if id == ancestor {
			return true
		}
		n, ok := s.nodes[id]
		if !ok {
			return false
		}
		id = n.ParentID
		seen++
	}
	return false
}

func (s *Store) isCloned(id dom.NodeID) bool {
	_, ok := s.cloned[id]
	return ok
}

func (s *Store) cloneInPlace(n *dom.Node) *dom.Node {
	c := n.Clone()
	s.nodes[c.ID] = c
	s.cloned[c.ID] = struct{}{}
	s.dirty = true
	return c
}

// relink points parent's reference to child.ID at the child pointer.
func (s *Store) relink(parent, child *dom.Node) {
	if i := parent.ChildIndex(child.ID); i >= 0 {
		parent.Children[i] = child
		return
	}
	if parent.ShadowRoot != nil && parent.ShadowRoot.ID == child.ID {
		parent.ShadowRoot = child
		return
	}
	if parent.ContentDocument != nil && parent.ContentDocument.ID == child.ID {
		parent.ContentDocument = child
		return
	}
	s.inconsistent("node %s claims parent %s which does not reference it", child.ID, parent.ID)
}

func (s *Store) inconsistent(format string, args ...any) {
	err := fmt.Errorf(format, args...)
	s.issues = append(s.issues, err)
	s.logger.Warn("inconsistent node tree", "error", err)
}
