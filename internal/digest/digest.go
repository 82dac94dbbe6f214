package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/rewind/internal/dom"
	"github.com/roach88/rewind/internal/engine"
)

// DomainSnapshot prefixes snapshot digests. The version suffix allows the
// encoding to change later without colliding with stored digests.
const DomainSnapshot = "rewind/snapshot/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Snapshot returns the digest of the state held by snap: the tree and all
// auxiliary state. The snapshot version is excluded, so two engines that
// reached the same state through different seeks agree.
func Snapshot(snap *engine.Snapshot) (string, error) {
	canonical, err := MarshalCanonical(SnapshotObject(snap))
	if err != nil {
		return "", fmt.Errorf("digest snapshot: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// SnapshotObject converts snap to the generic form that is hashed. The tree
// is flattened to pre-order node records carrying their parent, and hosts
// name their shadow root and content document, which pins down the shape
// without recursion.
func SnapshotObject(snap *engine.Snapshot) map[string]any {
	obj := map[string]any{
		"nodes":           []any{},
		"touches":         []any{},
		"custom_elements": []any{},
		"cursor":          cursorObject(snap.Cursor),
	}
	if snap.Viewport != nil {
		obj["viewport"] = sizeObject(snap.Viewport)
	}
	if snap.Screen != nil {
		obj["screen"] = sizeObject(snap.Screen)
	}
	touches := make([]any, len(snap.Touches))
	for i, t := range snap.Touches {
		touches[i] = map[string]any{"id": t.ID, "x": t.X, "y": t.Y}
	}
	obj["touches"] = touches
	names := make([]any, len(snap.CustomElements))
	for i, name := range snap.CustomElements {
		names[i] = name
	}
	obj["custom_elements"] = names

	var nodes []any
	for n := range dom.Subtree(snap.Document) {
		nodes = append(nodes, nodeObject(n))
	}
	if nodes != nil {
		obj["nodes"] = nodes
	}
	return obj
}

func nodeObject(n *dom.Node) map[string]any {
	obj := map[string]any{
		"id":   string(n.ID),
		"kind": int(n.Kind),
	}
	if n.ParentID != "" {
		obj["parent"] = string(n.ParentID)
	}
	if n.Kind == dom.KindElement {
		obj["name"] = n.LocalName
		obj["ns"] = n.Namespace
		attrs := make([]any, len(n.Attrs))
		for i, a := range n.Attrs {
			attrs[i] = []any{a.Namespace, a.Name, a.Value}
		}
		obj["attrs"] = attrs
	}
	if n.Kind.HasCharacterData() {
		obj["data"] = n.Data
	}
	if n.Kind == dom.KindDocumentType {
		obj["doctype"] = []any{n.QualifiedName, n.PublicID, n.SystemID}
	}
	if n.Value != nil {
		obj["value"] = *n.Value
	}
	if n.Checked != nil {
		obj["checked"] = *n.Checked
	}
	if n.SelectedIndex != nil {
		obj["selected_index"] = *n.SelectedIndex
	}
	if n.ScrollTop != nil {
		obj["scroll_top"] = *n.ScrollTop
	}
	if n.ScrollLeft != nil {
		obj["scroll_left"] = *n.ScrollLeft
	}
	if n.Paused != nil {
		obj["paused"] = *n.Paused
	}
	if n.ShadowRoot != nil {
		obj["shadow_root"] = string(n.ShadowRoot.ID)
	}
	if n.ContentDocument != nil {
		obj["content_document"] = string(n.ContentDocument.ID)
	}
	return obj
}

func cursorObject(c engine.Cursor) map[string]any {
	obj := map[string]any{}
	if c.X != nil {
		obj["x"] = *c.X
	}
	if c.Y != nil {
		obj["y"] = *c.Y
	}
	if c.Pressed != nil {
		obj["pressed"] = *c.Pressed
	}
	if c.Hover != "" {
		obj["hover"] = string(c.Hover)
	}
	return obj
}

func sizeObject(s *engine.Size) map[string]any {
	return map[string]any{"width": s.Width, "height": s.Height}
}
