package recording

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rewind/internal/dom"
)

const page = `<!DOCTYPE html><html><head></head><body><p class="x">hi</p><!--c--><svg><a xlink:href="#t"></a></svg></body></html>`

func TestFromHTML(t *testing.T) {
	ev, err := FromHTML(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, TypeInitialDOM, ev.Type)
	require.Len(t, ev.Args, 1)

	doc, ok := ev.Args[0].(*dom.SerializedNode)
	require.True(t, ok)
	assert.Equal(t, int64(1), doc.LocalID)
	assert.Equal(t, dom.KindDocument, doc.Kind)
	require.Len(t, doc.Children, 2)

	doctype := doc.Children[0]
	assert.Equal(t, dom.KindDocumentType, doctype.Kind)
	assert.Equal(t, "html", doctype.QualifiedName)

	htmlEl := doc.Children[1]
	assert.Equal(t, "html", htmlEl.LocalName)
	require.Len(t, htmlEl.Children, 2)
	body := htmlEl.Children[1]
	require.Len(t, body.Children, 3)

	p := body.Children[0]
	assert.Equal(t, []dom.SerializedAttr{{Name: "class", Value: "x"}}, p.Attributes)
	require.Len(t, p.Children, 1)
	assert.Equal(t, "hi", p.Children[0].Data)

	assert.Equal(t, dom.KindComment, body.Children[1].Kind)

	svg := body.Children[2]
	assert.Equal(t, "http://www.w3.org/2000/svg", svg.Namespace)
	require.Len(t, svg.Children, 1)
	link := svg.Children[0]
	require.Len(t, link.Attributes, 1)
	assert.Equal(t, "href", link.Attributes[0].Name)
	assert.Equal(t, "http://www.w3.org/1999/xlink", link.Attributes[0].Namespace)
}

func TestFromHTML_IDsInDocumentOrder(t *testing.T) {
	ev, err := FromHTML(strings.NewReader(page))
	require.NoError(t, err)
	doc := ev.Args[0].(*dom.SerializedNode)

	var ids []int64
	var walk func(*dom.SerializedNode)
	walk = func(sn *dom.SerializedNode) {
		ids = append(ids, sn.LocalID.(int64))
		for _, c := range sn.Children {
			walk(c)
		}
	}
	walk(doc)

	for i, id := range ids {
		assert.Equal(t, int64(i+1), id)
	}
}

func TestNamespaceURI(t *testing.T) {
	assert.Equal(t, "", namespaceURI(""))
	assert.Equal(t, "http://www.w3.org/1998/Math/MathML", namespaceURI("math"))
	assert.Equal(t, "urn:x", namespaceURI("urn:x"))
}
