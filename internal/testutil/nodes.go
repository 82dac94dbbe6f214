package testutil

import (
	"github.com/roach88/rewind/internal/dom"
)

// XHTML is the namespace builders give to elements.
const XHTML = "http://www.w3.org/1999/xhtml"

// Builder creates serialized nodes with local ids allocated in call order,
// the way a capture script numbers one document. Use a separate Builder per
// frame document: frames have their own id space.
type Builder struct {
	next int64
}

// NewBuilder creates a builder whose first node gets local id 1.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) node(kind dom.Kind) *dom.SerializedNode {
	b.next++
	return &dom.SerializedNode{LocalID: b.next, Kind: kind}
}

// Doc builds a document node.
func (b *Builder) Doc(children ...*dom.SerializedNode) *dom.SerializedNode {
	n := b.node(dom.KindDocument)
	n.Children = children
	return n
}

// El builds an XHTML element.
func (b *Builder) El(localName string, children ...*dom.SerializedNode) *dom.SerializedNode {
	n := b.node(dom.KindElement)
	n.LocalName = localName
	n.Namespace = XHTML
	n.Children = children
	return n
}

// ElAttrs builds an XHTML element with attributes.
func (b *Builder) ElAttrs(localName string, attrs []dom.SerializedAttr, children ...*dom.SerializedNode) *dom.SerializedNode {
	n := b.El(localName, children...)
	n.Attributes = attrs
	return n
}

// Text builds a text node.
func (b *Builder) Text(data string) *dom.SerializedNode {
	n := b.node(dom.KindText)
	n.Data = data
	return n
}

// Comment builds a comment node.
func (b *Builder) Comment(data string) *dom.SerializedNode {
	n := b.node(dom.KindComment)
	n.Data = data
	return n
}

// Shadow builds a shadow root fragment.
func (b *Builder) Shadow(children ...*dom.SerializedNode) *dom.SerializedNode {
	n := b.node(dom.KindDocumentFragment)
	n.Children = children
	return n
}

// Frame builds an iframe element hosting doc. doc should come from its own
// Builder.
func (b *Builder) Frame(doc *dom.SerializedNode) *dom.SerializedNode {
	n := b.El("iframe")
	n.ContentDocument = doc
	return n
}

// A builds an attribute without namespace.
func A(name, value string) dom.SerializedAttr {
	return dom.SerializedAttr{Name: name, Value: value}
}

// ID returns the local id of a node built by a Builder, as recorded in
// event args.
func ID(n *dom.SerializedNode) int64 {
	id, _ := n.LocalID.(int64)
	return id
}

// GID returns the global id of a builder node in context.
func GID(n *dom.SerializedNode, context dom.NodeID) dom.NodeID {
	local, err := n.Local()
	if err != nil {
		panic(err)
	}
	return dom.Resolve(local, context)
}
