package dom

import (
	"errors"
	"fmt"
)

// ErrUnknownNode is returned when an id does not resolve to a live node.
var ErrUnknownNode = errors.New("unknown node")

// UnknownNodeError wraps ErrUnknownNode with the offending id.
func UnknownNodeError(id NodeID) error {
	return fmt.Errorf("%w: %s", ErrUnknownNode, id)
}

// Kind is the node type, using the DOM numeric node type codes of the
// capture format.
type Kind int

const (
	KindElement          Kind = 1
	KindText             Kind = 3
	KindCDATA            Kind = 4
	KindComment          Kind = 8
	KindDocument         Kind = 9
	KindDocumentType     Kind = 10
	KindDocumentFragment Kind = 11
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindCDATA:
		return "cdata"
	case KindComment:
		return "comment"
	case KindDocument:
		return "document"
	case KindDocumentType:
		return "doctype"
	case KindDocumentFragment:
		return "fragment"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// HasCharacterData reports whether nodes of this kind carry Data.
func (k Kind) HasCharacterData() bool {
	return k == KindText || k == KindComment || k == KindCDATA
}

// Attr is one element attribute. (Namespace, Name) is unique per element.
type Attr struct {
	Namespace string
	Name      string
	Value     string
}

// Node is one reconstructed node.
//
// Children, ShadowRoot and ContentDocument are owning edges; ParentID is a
// back-reference only. A shadow root or content document points back to its
// host through ParentID but is not listed in the host's Children.
type Node struct {
	ID      NodeID
	Context NodeID
	Kind    Kind

	LocalName string
	Namespace string
	Data      string
	Attrs     []Attr

	// Document type fields.
	QualifiedName string
	PublicID      string
	SystemID      string

	// Interaction state. nil means never observed.
	Value         *string
	Checked       *bool
	SelectedIndex *int
	ScrollTop     *float64
	ScrollLeft    *float64
	Paused        *bool

	ParentID        NodeID
	Children        []*Node
	ShadowRoot      *Node
	ContentDocument *Node
}

// Clone returns a shallow copy of n. The Children and Attrs slices are
// copied so the clone can be edited without touching n; child nodes
// themselves are shared.
func (n *Node) Clone() *Node {
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		copy(c.Children, n.Children)
	}
	if n.Attrs != nil {
		c.Attrs = make([]Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	return &c
}

// ChildIndex returns the position of id in n.Children, or -1.
func (n *Node) ChildIndex(id NodeID) int {
	for i, child := range n.Children {
		if child.ID == id {
			return i
		}
	}
	return -1
}

// Attr returns the value of the attribute matching (namespace, name).
func (n *Node) Attr(namespace, name string) (string, bool) {
	if i := n.attrIndex(namespace, name); i >= 0 {
		return n.Attrs[i].Value, true
	}
	return "", false
}

// SetAttr upserts (namespace, name). An existing attribute keeps its
// position; a new one is appended. Only call on a node owned by the caller.
func (n *Node) SetAttr(namespace, name, value string) {
	if i := n.attrIndex(namespace, name); i >= 0 {
		n.Attrs[i].Value = value
		return
	}
	n.Attrs = append(n.Attrs, Attr{Namespace: namespace, Name: name, Value: value})
}

// RemoveAttr deletes (namespace, name) and reports whether it was present.
func (n *Node) RemoveAttr(namespace, name string) bool {
	i := n.attrIndex(namespace, name)
	if i < 0 {
		return false
	}
	attrs := make([]Attr, 0, len(n.Attrs)-1)
	attrs = append(attrs, n.Attrs[:i]...)
	n.Attrs = append(attrs, n.Attrs[i+1:]...)
	return true
}

// attrIndex matches on the exact (namespace, name) pair.
func (n *Node) attrIndex(namespace, name string) int {
	for i, a := range n.Attrs {
		if a.Namespace == namespace && a.Name == name {
			return i
		}
	}
	return -1
}
