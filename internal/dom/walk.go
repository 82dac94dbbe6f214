package dom

import "iter"

// Subtree yields root and every node it owns in pre-order: the node, its
// children (in order), then its shadow root, then its content document.
//
// The traversal uses an explicit stack, so depth is bounded only by memory.
// The returned sequence can be ranged over any number of times.
func Subtree(root *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if root == nil {
			return
		}
		stack := []*Node{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n) {
				return
			}
			// Pushed in reverse so they pop in document order.
			if n.ContentDocument != nil {
				stack = append(stack, n.ContentDocument)
			}
			if n.ShadowRoot != nil {
				stack = append(stack, n.ShadowRoot)
			}
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, n.Children[i])
			}
		}
	}
}

// Find returns the first node of the subtree rooted at root with the given
// id, or nil.
func Find(root *Node, id NodeID) *Node {
	for n := range Subtree(root) {
		if n.ID == id {
			return n
		}
	}
	return nil
}
