package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/rewind/internal/dom"
	"github.com/roach88/rewind/internal/engine"
)

// Text renders snap as an indented tree preceded by the auxiliary state.
// The format is stable and used for golden files.
func Text(snap *engine.Snapshot) string {
	var sb strings.Builder
	WriteText(&sb, snap)
	return sb.String()
}

// WriteText writes the Text rendering of snap to w.
func WriteText(w io.Writer, snap *engine.Snapshot) {
	if snap == nil {
		fmt.Fprintln(w, "(no snapshot)")
		return
	}
	fmt.Fprintf(w, "version: %d\n", snap.Version)
	fmt.Fprintf(w, "viewport: %s\n", size(snap.Viewport))
	fmt.Fprintf(w, "screen: %s\n", size(snap.Screen))
	fmt.Fprintf(w, "cursor: %s\n", cursor(snap.Cursor))
	fmt.Fprintf(w, "touches: %s\n", touches(snap.Touches))
	fmt.Fprintf(w, "custom elements: %s\n", list(snap.CustomElements))
	fmt.Fprintln(w, "---")
	if snap.Document == nil {
		fmt.Fprintln(w, "(no document)")
		return
	}
	Walk(snap, ProjectorFunc(func(n *dom.Node, depth int, slot Slot) bool {
		fmt.Fprintf(w, "%s%s @%s\n", strings.Repeat("  ", depth), Label(n, slot), n.ID)
		return true
	}))
}

// Label is the one-line description of n.
func Label(n *dom.Node, slot Slot) string {
	switch n.Kind {
	case dom.KindElement:
		return element(n)
	case dom.KindText:
		return strconv.Quote(n.Data)
	case dom.KindComment:
		return "<!--" + n.Data + "-->"
	case dom.KindCDATA:
		return "<![CDATA[" + n.Data + "]]>"
	case dom.KindDocument:
		return "#document"
	case dom.KindDocumentType:
		return doctype(n)
	case dom.KindDocumentFragment:
		if slot == SlotShadowRoot {
			return "#shadow-root"
		}
		return "#fragment"
	default:
		return "#" + n.Kind.String()
	}
}

func element(n *dom.Node) string {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(n.LocalName)
	for _, a := range n.Attrs {
		sb.WriteString(" ")
		if a.Namespace != "" {
			sb.WriteString("{" + a.Namespace + "}")
		}
		sb.WriteString(a.Name)
		sb.WriteString("=")
		sb.WriteString(strconv.Quote(a.Value))
	}
	sb.WriteString(">")

	var state []string
	if n.Value != nil {
		state = append(state, "value="+strconv.Quote(*n.Value))
	}
	if n.Checked != nil {
		state = append(state, "checked="+strconv.FormatBool(*n.Checked))
	}
	if n.SelectedIndex != nil {
		state = append(state, "selected="+strconv.Itoa(*n.SelectedIndex))
	}
	if n.ScrollLeft != nil || n.ScrollTop != nil {
		state = append(state, "scroll="+optFloat(n.ScrollLeft)+","+optFloat(n.ScrollTop))
	}
	if n.Paused != nil {
		state = append(state, "paused="+strconv.FormatBool(*n.Paused))
	}
	if len(state) > 0 {
		sb.WriteString(" [" + strings.Join(state, " ") + "]")
	}
	return sb.String()
}

func doctype(n *dom.Node) string {
	s := "<!DOCTYPE " + n.QualifiedName
	if n.PublicID != "" {
		s += " PUBLIC " + strconv.Quote(n.PublicID)
	}
	if n.SystemID != "" {
		s += " " + strconv.Quote(n.SystemID)
	}
	return s + ">"
}

func size(s *engine.Size) string {
	if s == nil {
		return "-"
	}
	return formatFloat(s.Width) + "x" + formatFloat(s.Height)
}

func cursor(c engine.Cursor) string {
	var parts []string
	if c.X != nil || c.Y != nil {
		parts = append(parts, "at="+optFloat(c.X)+","+optFloat(c.Y))
	}
	if c.Pressed != nil {
		parts = append(parts, "pressed="+strconv.FormatBool(*c.Pressed))
	}
	if c.Hover != "" {
		parts = append(parts, "hover="+string(c.Hover))
	}
	return list(parts)
}

func touches(ts []engine.Touch) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = fmt.Sprintf("%d@%s,%s", t.ID, formatFloat(t.X), formatFloat(t.Y))
	}
	return list(parts)
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, " ")
}

func optFloat(f *float64) string {
	if f == nil {
		return "?"
	}
	return formatFloat(*f)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
