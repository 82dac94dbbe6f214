package dom

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		local   string
		context NodeID
		want    NodeID
	}{
		{"top level", "12", "", "12"},
		{"one frame", "12", "7", "7/12"},
		{"nested frame", "3", "7/12", "7/12/3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.local, tt.context))
		})
	}
}

func TestLocalID(t *testing.T) {
	tests := []struct {
		in      any
		want    string
		wantErr bool
	}{
		{in: 4, want: "4"},
		{in: int64(9), want: "9"},
		{in: float64(17), want: "17"},
		{in: json.Number("21"), want: "21"},
		{in: "a1", want: "a1"},
		{in: 1.5, wantErr: true},
		{in: nil, wantErr: true},
		{in: []int{1}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := LocalID(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %v", tt.in)
			continue
		}
		require.NoError(t, err, "input %v", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestInContext(t *testing.T) {
	assert.True(t, NodeID("7/12").InContext("7"))
	assert.True(t, NodeID("7/12/3").InContext("7"))
	assert.False(t, NodeID("70/1").InContext("7"))
	assert.False(t, NodeID("7").InContext("7"))
	assert.True(t, NodeID("7").InContext(""))
}

func TestNodeAttributes(t *testing.T) {
	n := &Node{ID: "1", Kind: KindElement}
	n.SetAttr("", "class", "a")
	n.SetAttr("", "id", "x")
	n.SetAttr("http://www.w3.org/1999/xlink", "href", "#a")
	n.SetAttr("", "class", "b")

	require.Len(t, n.Attrs, 3)
	assert.Equal(t, Attr{Name: "class", Value: "b"}, n.Attrs[0])

	v, ok := n.Attr("", "href")
	assert.False(t, ok, "href without namespace must not match the xlink attribute")
	assert.Empty(t, v)

	v, ok = n.Attr("http://www.w3.org/1999/xlink", "href")
	assert.True(t, ok)
	assert.Equal(t, "#a", v)

	assert.True(t, n.RemoveAttr("", "id"))
	assert.False(t, n.RemoveAttr("", "id"))
	assert.Len(t, n.Attrs, 2)
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	child := &Node{ID: "2"}
	n := &Node{ID: "1", Children: []*Node{child}, Attrs: []Attr{{Name: "a", Value: "1"}}}

	c := n.Clone()
	c.Children[0] = &Node{ID: "3"}
	c.SetAttr("", "a", "2")

	assert.Same(t, child, n.Children[0])
	assert.Equal(t, "1", n.Attrs[0].Value)
}

func TestSubtreeOrder(t *testing.T) {
	frameDoc := &Node{ID: "5/1"}
	shadow := &Node{ID: "4"}
	root := &Node{ID: "1", Children: []*Node{
		{ID: "2", Children: []*Node{{ID: "3"}}},
		{ID: "5", ContentDocument: frameDoc},
	}, ShadowRoot: shadow}

	var ids []NodeID
	for n := range Subtree(root) {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []NodeID{"1", "2", "3", "5", "5/1", "4"}, ids)

	// Restartable.
	count := 0
	for range Subtree(root) {
		count++
	}
	assert.Equal(t, 6, count)

	assert.Same(t, frameDoc, Find(root, "5/1"))
	assert.Nil(t, Find(root, "9"))
}

func TestDecodeSerialized(t *testing.T) {
	var generic any
	require.NoError(t, json.Unmarshal([]byte(`{
		"csId": 1, "nodeType": 1, "localName": "div",
		"attributes": [{"name": "class", "value": "c"}],
		"children": [{"csId": 2, "nodeType": 3, "data": "hi"}]
	}`), &generic))

	sn, err := DecodeSerialized(generic)
	require.NoError(t, err)
	assert.Equal(t, KindElement, sn.Kind)
	assert.Equal(t, "div", sn.LocalName)
	require.Len(t, sn.Children, 1)
	assert.Equal(t, "hi", sn.Children[0].Data)

	local, err := sn.Local()
	require.NoError(t, err)
	assert.Equal(t, "1", local)

	_, err = DecodeSerialized(nil)
	assert.Error(t, err)
}
