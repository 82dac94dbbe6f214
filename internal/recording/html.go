package recording

import (
	"fmt"
	"io"

	"golang.org/x/net/html"

	"github.com/roach88/rewind/internal/dom"
)

// FromHTML parses an HTML document and returns the initial_dom event that
// would have been recorded for it. Local ids are assigned in document order
// starting at 1 for the document node.
func FromHTML(r io.Reader) (Event, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Event{}, fmt.Errorf("parse html: %w", err)
	}
	var next int64
	sn := convertHTML(root, &next)
	if sn == nil {
		return Event{}, fmt.Errorf("parse html: empty document")
	}
	return New(TypeInitialDOM, sn), nil
}

func convertHTML(n *html.Node, next *int64) *dom.SerializedNode {
	var kind dom.Kind
	switch n.Type {
	case html.DocumentNode:
		kind = dom.KindDocument
	case html.ElementNode:
		kind = dom.KindElement
	case html.TextNode:
		kind = dom.KindText
	case html.CommentNode:
		kind = dom.KindComment
	case html.DoctypeNode:
		kind = dom.KindDocumentType
	default:
		return nil
	}

	*next++
	sn := &dom.SerializedNode{LocalID: *next, Kind: kind}
	switch kind {
	case dom.KindElement:
		sn.LocalName = n.Data
		sn.Namespace = namespaceURI(n.Namespace)
		for _, a := range n.Attr {
			sn.Attributes = append(sn.Attributes, dom.SerializedAttr{
				Name:      a.Key,
				Value:     a.Val,
				Namespace: namespaceURI(a.Namespace),
			})
		}
	case dom.KindText, dom.KindComment:
		sn.Data = n.Data
	case dom.KindDocumentType:
		sn.QualifiedName = n.Data
		for _, a := range n.Attr {
			switch a.Key {
			case "public":
				sn.PublicID = a.Val
			case "system":
				sn.SystemID = a.Val
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := convertHTML(c, next); child != nil {
			sn.Children = append(sn.Children, child)
		}
	}
	return sn
}

// The html package reports short namespace names; recordings carry URIs.
func namespaceURI(ns string) string {
	switch ns {
	case "":
		return ""
	case "svg":
		return "http://www.w3.org/2000/svg"
	case "math":
		return "http://www.w3.org/1998/Math/MathML"
	case "xlink":
		return "http://www.w3.org/1999/xlink"
	case "xml":
		return "http://www.w3.org/XML/1998/namespace"
	case "xmlns":
		return "http://www.w3.org/2000/xmlns/"
	default:
		return ns
	}
}
