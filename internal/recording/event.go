// Package recording defines the recorded event stream consumed by the
// engine, and how recordings are loaded, validated and identified.
package recording

import (
	"github.com/roach88/rewind/internal/dom"
)

// Type is the event type tag.
type Type string

const (
	TypeInitialDOM     Type = "initial_dom"
	TypeMutationInsert Type = "mutation_insert"
	TypeMutationMove   Type = "mutation_move"
	TypeMutationRemove Type = "mutation_remove"
	TypeCharacterData  Type = "mutation_character_data"
	TypeAttribute      Type = "mutation_attribute"
	TypeAttachShadow   Type = "attach_shadow"
	TypeInputText      Type = "input_text"
	TypeInputCheckable Type = "input_checkable"
	TypeInputSelect    Type = "input_select"
	TypeScroll         Type = "scroll"
	TypeMediaPlay      Type = "html_media_element_play"
	TypeMediaPause     Type = "html_media_element_pause"
	TypeMouseDown      Type = "mouse_down"
	TypeMouseUp        Type = "mouse_up"
	TypeMouseMove      Type = "mouse_move"
	TypeMouseOver      Type = "mouse_over"
	TypeTouchStart     Type = "touch_start"
	TypeTouchMove      Type = "touch_move"
	TypeTouchEnd       Type = "touch_end"
	TypeTouchCancel    Type = "touch_cancel"
	TypeCustomElement  Type = "custom_element_registration"
	TypeResize         Type = "resize"
	TypeScreenResize   Type = "screen_resize"
)

// Event is one recorded change. Args are untyped; their shape depends on
// Type. Context, when set, is the global id that scopes every local node id
// in Args (the frame element for events emitted inside a frame).
type Event struct {
	Type      Type       `json:"type" yaml:"type"`
	Args      []any      `json:"args,omitempty" yaml:"args,omitempty"`
	Context   dom.NodeID `json:"context,omitempty" yaml:"context,omitempty"`
	Timestamp int64      `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// New builds an event in the top-level document.
func New(t Type, args ...any) Event {
	return Event{Type: t, Args: args}
}

// Recording is an ordered event stream with an identity.
type Recording struct {
	ID     string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Events []Event `json:"events" yaml:"events"`
}
