// Package dom defines the reconstructed node model shared by the store, the
// engine and every snapshot consumer.
//
// # Identity
//
// Captured documents number their nodes with small local integers. Embedded
// frames are numbered independently, so the same local id can appear in
// several documents of one recording. A global id is derived from the local
// id and a context:
//
//	Resolve(12, "")      → "12"
//	Resolve(12, "7")     → "7/12"
//	Resolve(3,  "7/12")  → "7/12/3"
//
// The context of a frame's content document (and of every node inside it) is
// the global id of the frame element hosting it. Events emitted from inside a
// frame carry that same id as their context.
//
// # Sharing
//
// A *Node reachable from a published snapshot is frozen. Only the node store
// may produce modified copies (see Clone); consumers compare pointers to
// detect unchanged subtrees.
package dom
