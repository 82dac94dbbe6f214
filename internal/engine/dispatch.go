package engine

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"

	"github.com/roach88/rewind/internal/dom"
	"github.com/roach88/rewind/internal/nodestore"
	"github.com/roach88/rewind/internal/recording"
)

// ArgKind declares how a positional event argument is resolved before the
// handler runs.
type ArgKind int

const (
	// ArgRaw passes the argument through untouched.
	ArgRaw ArgKind = iota

	// ArgNodeID resolves a local id in the event context. The store is not
	// consulted.
	ArgNodeID

	// ArgOptionalNodeID is ArgNodeID, except that null or a missing argument
	// resolves to the empty id.
	ArgOptionalNodeID

	// ArgNodeRef resolves a local id and fetches the live node. The node may
	// be shared with published snapshots and must not be written through;
	// handlers call Args.Edit once they know the event changes it.
	ArgNodeRef
)

// Handler applies one event. It may only touch the engine through its
// methods and the resolved args.
type Handler func(e *Engine, args Args) error

// Route binds an event type to its handler and argument kinds.
//
// When WholeEvent is set the handler receives the raw event and resolves
// its own arguments; Args is ignored. This is used by handlers that
// materialize serialized subtrees in the event context.
type Route struct {
	Handle     Handler
	Args       []ArgKind
	WholeEvent bool
}

// Registry maps event types to routes. Types without a route are ignored.
type Registry map[recording.Type]Route

// defaultRegistry is built once at package initialization.
var defaultRegistry = Registry{
	recording.TypeInitialDOM:     {Handle: initialDOM, WholeEvent: true},
	recording.TypeMutationInsert: {Handle: mutationInsert, WholeEvent: true},
	recording.TypeMutationMove:   {Handle: mutationMove, Args: []ArgKind{ArgNodeRef, ArgOptionalNodeID, ArgNodeID}},
	recording.TypeMutationRemove: {Handle: mutationRemove, Args: []ArgKind{ArgNodeRef}},
	recording.TypeCharacterData:  {Handle: characterData, Args: []ArgKind{ArgNodeRef, ArgRaw}},
	recording.TypeAttribute:      {Handle: attribute, Args: []ArgKind{ArgNodeRef, ArgRaw, ArgRaw, ArgRaw}},
	recording.TypeAttachShadow:   {Handle: attachShadow, WholeEvent: true},
	recording.TypeInputText:      {Handle: inputText, Args: []ArgKind{ArgNodeRef, ArgRaw}},
	recording.TypeInputCheckable: {Handle: inputCheckable, Args: []ArgKind{ArgNodeRef, ArgRaw}},
	recording.TypeInputSelect:    {Handle: inputSelect, Args: []ArgKind{ArgNodeRef, ArgRaw}},
	recording.TypeScroll:         {Handle: scroll, Args: []ArgKind{ArgNodeRef, ArgRaw, ArgRaw}},
	recording.TypeMediaPlay:      {Handle: mediaPlay, Args: []ArgKind{ArgNodeRef}},
	recording.TypeMediaPause:     {Handle: mediaPause, Args: []ArgKind{ArgNodeRef}},
	recording.TypeMouseDown:      {Handle: mouseDown},
	recording.TypeMouseUp:        {Handle: mouseUp},
	recording.TypeMouseMove:      {Handle: mouseMove, Args: []ArgKind{ArgRaw, ArgRaw}},
	recording.TypeMouseOver:      {Handle: mouseOver, Args: []ArgKind{ArgNodeID}},
	recording.TypeTouchStart:     {Handle: touchStart, Args: []ArgKind{ArgRaw, ArgRaw, ArgRaw}},
	recording.TypeTouchMove:      {Handle: touchMove, Args: []ArgKind{ArgRaw, ArgRaw, ArgRaw}},
	recording.TypeTouchEnd:       {Handle: touchEnd, Args: []ArgKind{ArgRaw}},
	recording.TypeTouchCancel:    {Handle: touchEnd, Args: []ArgKind{ArgRaw}},
	recording.TypeCustomElement:  {Handle: customElement, Args: []ArgKind{ArgRaw}},
	recording.TypeResize:         {Handle: resize, Args: []ArgKind{ArgRaw, ArgRaw}},
	recording.TypeScreenResize:   {Handle: screenResize, Args: []ArgKind{ArgRaw, ArgRaw}},
}

// DefaultRegistry returns a copy of the built-in routes. Callers may add or
// override routes on the copy and pass it to WithRegistry.
func DefaultRegistry() Registry {
	return maps.Clone(defaultRegistry)
}

// Args holds the resolved arguments of one event.
type Args struct {
	Event  recording.Event
	values []any
	store  *nodestore.Store
}

// Len returns the number of resolved arguments.
func (a Args) Len() int {
	return len(a.values)
}

// Raw returns argument i as recorded.
func (a Args) Raw(i int) any {
	if i < 0 || i >= len(a.values) {
		return nil
	}
	return a.values[i]
}

// Node returns argument i resolved as ArgNodeRef, for reading only.
func (a Args) Node(i int) *dom.Node {
	n, _ := a.Raw(i).(*dom.Node)
	return n
}

// Edit returns a writable version of the node in argument i, cloning it
// and its ancestors for the current batch.
func (a Args) Edit(i int) (*dom.Node, error) {
	n := a.Node(i)
	if n == nil || a.store == nil {
		return nil, &ArgError{Pos: i, Err: fmt.Errorf("not a node reference")}
	}
	return a.store.Mutable(n.ID)
}

// ID returns argument i resolved as ArgNodeID or ArgOptionalNodeID.
func (a Args) ID(i int) dom.NodeID {
	id, _ := a.Raw(i).(dom.NodeID)
	return id
}

// String returns argument i as a string.
func (a Args) String(i int) (string, error) {
	s, ok := a.Raw(i).(string)
	if !ok {
		return "", &ArgError{Pos: i, Err: fmt.Errorf("want string, got %T", a.Raw(i))}
	}
	return s, nil
}

// OptionalString returns argument i as a string, or false when it is null
// or missing.
func (a Args) OptionalString(i int) (string, bool, error) {
	if a.Raw(i) == nil {
		return "", false, nil
	}
	s, err := a.String(i)
	return s, err == nil, err
}

// Float returns argument i as a number.
func (a Args) Float(i int) (float64, error) {
	f, err := toFloat(a.Raw(i))
	if err != nil {
		return 0, &ArgError{Pos: i, Err: err}
	}
	return f, nil
}

// Int returns argument i as an integral number.
func (a Args) Int(i int) (int64, error) {
	f, err := a.Float(i)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, &ArgError{Pos: i, Err: fmt.Errorf("want integer, got %v", f)}
	}
	return int64(f), nil
}

// Bool returns argument i as a boolean.
func (a Args) Bool(i int) (bool, error) {
	b, ok := a.Raw(i).(bool)
	if !ok {
		return false, &ArgError{Pos: i, Err: fmt.Errorf("want bool, got %T", a.Raw(i))}
	}
	return b, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("want number, got %T", v)
	}
}

// resolve turns the raw event args into handler args according to kinds.
// Nothing is cloned here, so an event rejected by its handler leaves the
// tree as it was.
func (e *Engine) resolve(ev recording.Event, kinds []ArgKind) (Args, error) {
	if len(ev.Args) < len(kinds) {
		// Trailing optional ids may be omitted.
		for i := len(ev.Args); i < len(kinds); i++ {
			if kinds[i] != ArgOptionalNodeID {
				return Args{}, &ArgError{Pos: i, Err: fmt.Errorf("missing argument")}
			}
		}
	}
	values := make([]any, max(len(ev.Args), len(kinds)))
	copy(values, ev.Args)

	for i, kind := range kinds {
		switch kind {
		case ArgNodeID:
			id, err := dom.ResolveArg(values[i], ev.Context)
			if err != nil {
				return Args{}, &ArgError{Pos: i, Err: err}
			}
			values[i] = id
		case ArgOptionalNodeID:
			if values[i] == nil {
				values[i] = dom.NodeID("")
				continue
			}
			id, err := dom.ResolveArg(values[i], ev.Context)
			if err != nil {
				return Args{}, &ArgError{Pos: i, Err: err}
			}
			values[i] = id
		case ArgNodeRef:
			id, err := dom.ResolveArg(values[i], ev.Context)
			if err != nil {
				return Args{}, &ArgError{Pos: i, Err: err}
			}
			n, err := e.store.Get(id)
			if err != nil {
				return Args{}, &ArgError{Pos: i, Err: err}
			}
			values[i] = n
		}
	}
	return Args{Event: ev, values: values, store: e.store}, nil
}
