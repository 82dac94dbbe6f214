package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/rewind/internal/dom"
	"github.com/roach88/rewind/internal/nodestore"
	"github.com/roach88/rewind/internal/recording"
)

// Tree events.

// initialDOM loads a document. Without a context it replaces the whole
// session; with a context it becomes the content document of the frame
// element the context names, replacing what that frame held before.
func initialDOM(e *Engine, args Args) error {
	ev := args.Event
	sn, err := serializedArg(ev, 0)
	if err != nil {
		return err
	}

	if ev.Context == "" {
		removed := e.store.ClearContext("")
		root, err := e.store.Materialize(sn, "", "")
		if err != nil {
			return err
		}
		e.store.SetDocument(root)
		e.logger.Debug("document loaded", "root", root.ID, "replaced", removed, "nodes", e.store.Len())
		return nil
	}

	host, err := e.store.Mutable(ev.Context)
	if err != nil {
		return fmt.Errorf("frame host: %w", err)
	}
	removed := e.store.ClearContext(ev.Context)
	root, err := e.store.Materialize(sn, ev.Context, host.ID)
	if err != nil {
		return err
	}
	host.ContentDocument = root
	e.logger.Debug("frame document loaded", "host", host.ID, "root", root.ID, "replaced", removed)
	return nil
}

// mutationInsert args: parent, next sibling (optional), serialized node.
func mutationInsert(e *Engine, args Args) error {
	ev := args.Event
	if len(ev.Args) < 3 {
		return &ArgError{Pos: len(ev.Args), Err: fmt.Errorf("missing argument")}
	}
	parentID, err := dom.ResolveArg(ev.Args[0], ev.Context)
	if err != nil {
		return &ArgError{Pos: 0, Err: err}
	}
	var next dom.NodeID
	if ev.Args[1] != nil {
		if next, err = dom.ResolveArg(ev.Args[1], ev.Context); err != nil {
			return &ArgError{Pos: 1, Err: err}
		}
	}
	sn, err := serializedArg(ev, 2)
	if err != nil {
		return err
	}
	if !e.store.Has(parentID) {
		return dom.UnknownNodeError(parentID)
	}
	if err := e.evictLive(sn, ev.Context, parentID); err != nil {
		return err
	}

	child, err := e.store.Materialize(sn, ev.Context, "")
	if err != nil {
		return err
	}
	if err := e.store.Attach(child, parentID, next); err != nil {
		// Never leave an unreachable subtree in the table.
		if _, derr := e.store.DeleteSubtree(child.ID); derr != nil {
			e.logger.Warn("discard rejected insert", "id", child.ID, "error", derr)
		}
		return err
	}
	return nil
}

// evictLive removes every live node that the serialized subtree sn is about
// to record again, anywhere in the subtree, so no id is ever attached
// twice. A subtree that would evict anchor, the node it is being attached
// to, or one of anchor's ancestors is rejected before anything changes.
func (e *Engine) evictLive(sn *dom.SerializedNode, context, anchor dom.NodeID) error {
	live := e.store.LiveIDs(sn, context)
	for _, id := range live {
		if e.store.Owns(id, anchor) {
			return fmt.Errorf("%w: recorded subtree reuses %s, which owns %s", nodestore.ErrInvalidAttach, id, anchor)
		}
	}
	for _, id := range live {
		if !e.store.Has(id) {
			// Gone with an earlier eviction.
			continue
		}
		e.logger.Debug("insert replaces live node", "id", id)
		if err := e.remove(id); err != nil {
			return err
		}
	}
	return nil
}

// mutationMove args: node, next sibling (optional), parent.
func mutationMove(e *Engine, args Args) error {
	return e.store.Move(args.Node(0).ID, args.ID(2), args.ID(1))
}

func mutationRemove(e *Engine, args Args) error {
	return e.remove(args.Node(0).ID)
}

// remove detaches id and drops its whole subtree, shadow roots and content
// documents included.
func (e *Engine) remove(id dom.NodeID) error {
	n, err := e.store.Mutable(id)
	if err != nil {
		return err
	}
	if err := e.store.Detach(n); err != nil {
		return err
	}
	removed, err := e.store.DeleteSubtree(id)
	if err != nil {
		return err
	}
	e.logger.Debug("subtree removed", "id", id, "nodes", removed)
	return nil
}

func characterData(e *Engine, args Args) error {
	data, err := args.String(1)
	if err != nil {
		return err
	}
	return update(args, args.Node(0).Data == data, func(n *dom.Node) { n.Data = data })
}

// attribute args: node, namespace (null for none), name, value (null
// removes the attribute).
func attribute(e *Engine, args Args) error {
	namespace, _, err := args.OptionalString(1)
	if err != nil {
		return err
	}
	name, err := args.String(2)
	if err != nil {
		return err
	}
	value, present, err := args.OptionalString(3)
	if err != nil {
		return err
	}
	current, has := args.Node(0).Attr(namespace, name)
	if !present {
		return update(args, !has, func(n *dom.Node) { n.RemoveAttr(namespace, name) })
	}
	return update(args, has && current == value, func(n *dom.Node) { n.SetAttr(namespace, name, value) })
}

// attachShadow args: host, serialized shadow root. A host that already has a
// shadow root gets the new one in its place.
func attachShadow(e *Engine, args Args) error {
	ev := args.Event
	if len(ev.Args) < 2 {
		return &ArgError{Pos: len(ev.Args), Err: fmt.Errorf("missing argument")}
	}
	hostID, err := dom.ResolveArg(ev.Args[0], ev.Context)
	if err != nil {
		return &ArgError{Pos: 0, Err: err}
	}
	sn, err := serializedArg(ev, 1)
	if err != nil {
		return err
	}
	if !e.store.Has(hostID) {
		return dom.UnknownNodeError(hostID)
	}
	if err := e.evictLive(sn, ev.Context, hostID); err != nil {
		return err
	}
	host, err := e.store.Mutable(hostID)
	if err != nil {
		return err
	}
	if old := host.ShadowRoot; old != nil {
		host.ShadowRoot = nil
		if _, err := e.store.DeleteSubtree(old.ID); err != nil {
			e.logger.Warn("drop replaced shadow root", "host", host.ID, "error", err)
		}
	}
	root, err := e.store.Materialize(sn, ev.Context, host.ID)
	if err != nil {
		return err
	}
	host.ShadowRoot = root
	return nil
}

// serializedArg decodes argument i as a serialized subtree whose root
// carries a usable local id.
func serializedArg(ev recording.Event, i int) (*dom.SerializedNode, error) {
	if i >= len(ev.Args) {
		return nil, &ArgError{Pos: i, Err: fmt.Errorf("missing serialized node")}
	}
	sn, err := dom.DecodeSerialized(ev.Args[i])
	if err != nil {
		return nil, &ArgError{Pos: i, Err: err}
	}
	if _, err := sn.Local(); err != nil {
		return nil, &ArgError{Pos: i, Err: err}
	}
	return sn, nil
}

// update applies set to a writable version of the node in argument 0,
// unless the event would leave the node as it is.
func update(args Args, unchanged bool, set func(n *dom.Node)) error {
	if unchanged {
		return nil
	}
	n, err := args.Edit(0)
	if err != nil {
		return err
	}
	set(n)
	return nil
}

func same[T comparable](p *T, v T) bool {
	return p != nil && *p == v
}

// Interaction state.

func inputText(e *Engine, args Args) error {
	value, err := args.String(1)
	if err != nil {
		return err
	}
	return update(args, same(args.Node(0).Value, value), func(n *dom.Node) { n.Value = &value })
}

func inputCheckable(e *Engine, args Args) error {
	checked, err := args.Bool(1)
	if err != nil {
		return err
	}
	return update(args, same(args.Node(0).Checked, checked), func(n *dom.Node) { n.Checked = &checked })
}

func inputSelect(e *Engine, args Args) error {
	index, err := args.Int(1)
	if err != nil {
		return err
	}
	selected := int(index)
	return update(args, same(args.Node(0).SelectedIndex, selected), func(n *dom.Node) { n.SelectedIndex = &selected })
}

// scroll args: node, left, top.
func scroll(e *Engine, args Args) error {
	left, err := args.Float(1)
	if err != nil {
		return err
	}
	top, err := args.Float(2)
	if err != nil {
		return err
	}
	cur := args.Node(0)
	return update(args, same(cur.ScrollLeft, left) && same(cur.ScrollTop, top), func(n *dom.Node) {
		n.ScrollLeft = &left
		n.ScrollTop = &top
	})
}

func mediaPlay(e *Engine, args Args) error {
	return setPaused(args, false)
}

func mediaPause(e *Engine, args Args) error {
	return setPaused(args, true)
}

func setPaused(args Args, paused bool) error {
	return update(args, same(args.Node(0).Paused, paused), func(n *dom.Node) { n.Paused = &paused })
}

// Pointer. Each event sets only the cursor fields it concerns.

func mouseDown(e *Engine, _ Args) error {
	pressed := true
	e.updateCursor(func(c *Cursor) { c.Pressed = &pressed })
	return nil
}

func mouseUp(e *Engine, _ Args) error {
	pressed := false
	e.updateCursor(func(c *Cursor) { c.Pressed = &pressed })
	return nil
}

func mouseMove(e *Engine, args Args) error {
	x, err := args.Float(0)
	if err != nil {
		return err
	}
	y, err := args.Float(1)
	if err != nil {
		return err
	}
	e.updateCursor(func(c *Cursor) {
		c.X = &x
		c.Y = &y
	})
	return nil
}

func mouseOver(e *Engine, args Args) error {
	id := args.ID(0)
	e.updateCursor(func(c *Cursor) { c.Hover = id })
	return nil
}

func (e *Engine) updateCursor(update func(*Cursor)) {
	cursor := e.aux.cursor
	update(&cursor)
	e.aux.cursor = cursor
	e.auxDirty = true
}

// Touches, ordered by start time and unique by finger id.

func touchArgs(args Args) (Touch, error) {
	id, err := args.Int(0)
	if err != nil {
		return Touch{}, err
	}
	x, err := args.Float(1)
	if err != nil {
		return Touch{}, err
	}
	y, err := args.Float(2)
	if err != nil {
		return Touch{}, err
	}
	return Touch{ID: id, X: x, Y: y}, nil
}

// touchStart appends a finger. A finger id that is already down is replaced
// in place.
func touchStart(e *Engine, args Args) error {
	t, err := touchArgs(args)
	if err != nil {
		return err
	}
	e.setTouch(t, true)
	return nil
}

func touchMove(e *Engine, args Args) error {
	t, err := touchArgs(args)
	if err != nil {
		return err
	}
	if !e.setTouch(t, false) {
		e.logger.Debug("touch move for unknown finger", "finger", t.ID)
	}
	return nil
}

func touchEnd(e *Engine, args Args) error {
	id, err := args.Int(0)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(e.aux.touches, func(t Touch) bool { return t.ID == id })
	if i < 0 {
		return nil
	}
	e.aux.touches = slices.Delete(slices.Clone(e.aux.touches), i, i+1)
	e.auxDirty = true
	return nil
}

// setTouch replaces the entry for t.ID, or appends it when add is set. It
// reports whether anything changed.
func (e *Engine) setTouch(t Touch, add bool) bool {
	i := slices.IndexFunc(e.aux.touches, func(cur Touch) bool { return cur.ID == t.ID })
	switch {
	case i >= 0:
		touches := slices.Clone(e.aux.touches)
		touches[i] = t
		e.aux.touches = touches
	case add:
		touches := make([]Touch, len(e.aux.touches), len(e.aux.touches)+1)
		copy(touches, e.aux.touches)
		e.aux.touches = append(touches, t)
	default:
		return false
	}
	e.auxDirty = true
	return true
}

// Document-wide state.

func customElement(e *Engine, args Args) error {
	name, err := args.String(0)
	if err != nil {
		return err
	}
	if slices.Contains(e.aux.customElements, name) {
		return nil
	}
	names := make([]string, len(e.aux.customElements), len(e.aux.customElements)+1)
	copy(names, e.aux.customElements)
	e.aux.customElements = append(names, name)
	e.auxDirty = true
	return nil
}

func resize(e *Engine, args Args) error {
	size, err := sizeArgs(args)
	if err != nil {
		return err
	}
	e.aux.viewport = size
	e.auxDirty = true
	return nil
}

func screenResize(e *Engine, args Args) error {
	size, err := sizeArgs(args)
	if err != nil {
		return err
	}
	e.aux.screen = size
	e.auxDirty = true
	return nil
}

func sizeArgs(args Args) (*Size, error) {
	width, err := args.Float(0)
	if err != nil {
		return nil, err
	}
	height, err := args.Float(1)
	if err != nil {
		return nil, err
	}
	return &Size{Width: width, Height: height}, nil
}
