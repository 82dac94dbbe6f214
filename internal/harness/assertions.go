package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/rewind/internal/dom"
	"github.com/roach88/rewind/internal/engine"
	"github.com/roach88/rewind/internal/render"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// State is what assertions are evaluated against.
type State struct {
	Snapshot    *engine.Snapshot
	Diagnostics []engine.Diagnostic
}

// EvaluateAssertions checks every assertion against st and returns one
// message per failure.
func EvaluateAssertions(st State, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(st, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(st State, a Assertion) error {
	snap := st.Snapshot
	switch a.Type {
	case AssertNodeExists:
		if snap.Node(dom.NodeID(a.Node)) == nil {
			return &AssertionError{Type: a.Type, Expected: "node " + a.Node, Actual: "not live"}
		}
	case AssertNodeAbsent:
		if n := snap.Node(dom.NodeID(a.Node)); n != nil {
			return &AssertionError{Type: a.Type, Expected: "no node " + a.Node, Actual: render.Label(n, render.SlotChild)}
		}
	case AssertChildren:
		return assertChildren(snap, a)
	case AssertAttribute:
		return assertAttribute(snap, a)
	case AssertData:
		n, err := lookup(snap, a)
		if err != nil {
			return err
		}
		if !n.Kind.HasCharacterData() || n.Data != *a.Data {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%q", *a.Data), Actual: render.Label(n, render.SlotChild)}
		}
	case AssertCursor:
		return assertCursor(snap.Cursor, a)
	case AssertTouches:
		return assertTouches(snap.Touches, a)
	case AssertCustomElements:
		if !slices.Equal(snap.CustomElements, a.Elements) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(a.Elements), Actual: fmt.Sprint(snap.CustomElements)}
		}
	case AssertViewport:
		return assertViewport(snap.Viewport, a)
	case AssertDiagnostics:
		n := 0
		for _, d := range st.Diagnostics {
			if a.Code == "" || string(d.Code) == a.Code {
				n++
			}
		}
		if n != *a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d %s", *a.Count, a.Code), Actual: fmt.Sprint(n)}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func lookup(snap *engine.Snapshot, a Assertion) (*dom.Node, error) {
	n := snap.Node(dom.NodeID(a.Node))
	if n == nil {
		return nil, &AssertionError{Type: a.Type, Expected: "node " + a.Node, Actual: "not live"}
	}
	return n, nil
}

func assertChildren(snap *engine.Snapshot, a Assertion) error {
	n, err := lookup(snap, a)
	if err != nil {
		return err
	}
	got := make([]string, len(n.Children))
	for i, c := range n.Children {
		got[i] = string(c.ID)
	}
	want := a.Children
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     a.Type,
			Expected: "[" + strings.Join(want, " ") + "]",
			Actual:   "[" + strings.Join(got, " ") + "]",
		}
	}
	return nil
}

func assertAttribute(snap *engine.Snapshot, a Assertion) error {
	n, err := lookup(snap, a)
	if err != nil {
		return err
	}
	value, ok := n.Attr(a.Namespace, a.Name)
	switch {
	case a.Absent && ok:
		return &AssertionError{Type: a.Type, Expected: a.Name + " absent", Actual: fmt.Sprintf("%q", value)}
	case a.Absent:
		return nil
	case !ok:
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s=%q", a.Name, *a.Value), Actual: "absent"}
	case value != *a.Value:
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s=%q", a.Name, *a.Value), Actual: fmt.Sprintf("%q", value)}
	}
	return nil
}

func assertCursor(c engine.Cursor, a Assertion) error {
	var diffs []string
	if a.X != nil && (c.X == nil || *c.X != *a.X) {
		diffs = append(diffs, fmt.Sprintf("x=%v", *a.X))
	}
	if a.Y != nil && (c.Y == nil || *c.Y != *a.Y) {
		diffs = append(diffs, fmt.Sprintf("y=%v", *a.Y))
	}
	if a.Pressed != nil && (c.Pressed == nil || *c.Pressed != *a.Pressed) {
		diffs = append(diffs, fmt.Sprintf("pressed=%v", *a.Pressed))
	}
	if a.Hover != nil && string(c.Hover) != *a.Hover {
		diffs = append(diffs, "hover="+*a.Hover)
	}
	if len(diffs) > 0 {
		return &AssertionError{Type: a.Type, Expected: strings.Join(diffs, " "), Actual: cursorString(c)}
	}
	return nil
}

func cursorString(c engine.Cursor) string {
	var parts []string
	if c.X != nil {
		parts = append(parts, fmt.Sprintf("x=%v", *c.X))
	}
	if c.Y != nil {
		parts = append(parts, fmt.Sprintf("y=%v", *c.Y))
	}
	if c.Pressed != nil {
		parts = append(parts, fmt.Sprintf("pressed=%v", *c.Pressed))
	}
	if c.Hover != "" {
		parts = append(parts, "hover="+string(c.Hover))
	}
	if len(parts) == 0 {
		return "no cursor state"
	}
	return strings.Join(parts, " ")
}

// assertTouches compares the active touches as a set keyed by finger id.
func assertTouches(got []engine.Touch, a Assertion) error {
	want := make([]engine.Touch, len(a.Touches))
	for i, t := range a.Touches {
		want[i] = engine.Touch{ID: t.ID, X: t.X, Y: t.Y}
	}
	byID := func(x, y engine.Touch) int {
		switch {
		case x.ID < y.ID:
			return -1
		case x.ID > y.ID:
			return 1
		}
		return 0
	}
	sortedGot := slices.SortedFunc(slices.Values(got), byID)
	slices.SortFunc(want, byID)
	if !slices.Equal(sortedGot, want) {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprint(want), Actual: fmt.Sprint(sortedGot)}
	}
	return nil
}

func assertViewport(v *engine.Size, a Assertion) error {
	if a.Absent {
		if v != nil {
			return &AssertionError{Type: a.Type, Expected: "no viewport", Actual: fmt.Sprintf("%vx%v", v.Width, v.Height)}
		}
		return nil
	}
	if v == nil {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%vx%v", *a.Width, *a.Height), Actual: "no viewport"}
	}
	if v.Width != *a.Width || v.Height != *a.Height {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%vx%v", *a.Width, *a.Height),
			Actual:   fmt.Sprintf("%vx%v", v.Width, v.Height),
		}
	}
	return nil
}
