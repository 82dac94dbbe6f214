package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rewind/internal/dom"
	"github.com/roach88/rewind/internal/recording"
)

func TestBuilder_AllocatesIDsInCallOrder(t *testing.T) {
	b := NewBuilder()
	text := b.Text("a")
	comment := b.Comment("b")
	div := b.El("div", text, comment)

	assert.Equal(t, int64(1), ID(text))
	assert.Equal(t, int64(2), ID(comment))
	assert.Equal(t, int64(3), ID(div))
	assert.Equal(t, XHTML, div.Namespace)
	require.Len(t, div.Children, 2)
}

func TestBuilder_FrameKeepsOwnIDSpace(t *testing.T) {
	inner := NewBuilder()
	doc := inner.Doc(inner.El("p"))

	outer := NewBuilder()
	frame := outer.Frame(doc)

	assert.Equal(t, int64(1), ID(frame))
	assert.Equal(t, int64(2), ID(doc))
	assert.Equal(t, dom.NodeID("1/2"), GID(doc, GID(frame, "")))
}

func TestRecorder_StampsEvents(t *testing.T) {
	r := NewRecorder()
	b := NewBuilder()
	root := b.El("div")

	r.InitialDOM(root)
	r.Clock().Advance(100)
	r.Attribute(ID(root), nil, "class", "x")
	r.AddIn("9", recording.TypeMouseDown)

	events := r.Events()
	require.Len(t, events, 3)
	assert.Equal(t, int64(1), events[0].Timestamp)
	assert.Equal(t, int64(102), events[1].Timestamp)
	assert.Equal(t, dom.NodeID("9"), events[2].Context)
	assert.Equal(t, recording.TypeAttribute, events[1].Type)
	assert.Nil(t, events[1].Args[1])

	// Events returns a copy.
	events[0].Type = "changed"
	assert.Equal(t, recording.TypeInitialDOM, r.Events()[0].Type)
}
