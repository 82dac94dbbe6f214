package dom

import (
	"encoding/json"
	"fmt"
)

// SerializedNode is the capture-side encoding of a subtree, as embedded in
// initial document, insert and attach shadow events.
type SerializedNode struct {
	LocalID         any               `json:"csId" yaml:"csId"`
	Kind            Kind              `json:"nodeType" yaml:"nodeType"`
	LocalName       string            `json:"localName,omitempty" yaml:"localName,omitempty"`
	Namespace       string            `json:"namespaceURI,omitempty" yaml:"namespaceURI,omitempty"`
	Data            string            `json:"data,omitempty" yaml:"data,omitempty"`
	Attributes      []SerializedAttr  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Children        []*SerializedNode `json:"children,omitempty" yaml:"children,omitempty"`
	ShadowRoot      *SerializedNode   `json:"shadowRoot,omitempty" yaml:"shadowRoot,omitempty"`
	ContentDocument *SerializedNode   `json:"contentDocument,omitempty" yaml:"contentDocument,omitempty"`

	QualifiedName string `json:"qualifiedName,omitempty" yaml:"qualifiedName,omitempty"`
	PublicID      string `json:"publicId,omitempty" yaml:"publicId,omitempty"`
	SystemID      string `json:"systemId,omitempty" yaml:"systemId,omitempty"`

	Value         *string  `json:"value,omitempty" yaml:"value,omitempty"`
	Checked       *bool    `json:"checked,omitempty" yaml:"checked,omitempty"`
	SelectedIndex *int     `json:"selectedIndex,omitempty" yaml:"selectedIndex,omitempty"`
	ScrollTop     *float64 `json:"scrollTop,omitempty" yaml:"scrollTop,omitempty"`
	ScrollLeft    *float64 `json:"scrollLeft,omitempty" yaml:"scrollLeft,omitempty"`
	Paused        *bool    `json:"isPaused,omitempty" yaml:"isPaused,omitempty"`
}

// SerializedAttr is one attribute of a SerializedNode.
type SerializedAttr struct {
	Name      string `json:"name" yaml:"name"`
	Value     string `json:"value" yaml:"value"`
	Namespace string `json:"namespaceURI,omitempty" yaml:"namespaceURI,omitempty"`
}

// Local returns the canonical local id of s.
func (s *SerializedNode) Local() (string, error) {
	if s.LocalID == nil {
		return "", fmt.Errorf("serialized node without csId")
	}
	return LocalID(s.LocalID)
}

// DecodeSerialized converts an untyped event argument into a SerializedNode.
// It accepts *SerializedNode, SerializedNode, or any value with the JSON
// shape of one (the generic maps produced by JSON and YAML decoders).
func DecodeSerialized(v any) (*SerializedNode, error) {
	switch sn := v.(type) {
	case *SerializedNode:
		if sn == nil {
			return nil, fmt.Errorf("nil serialized node")
		}
		return sn, nil
	case SerializedNode:
		return &sn, nil
	case nil:
		return nil, fmt.Errorf("missing serialized node")
	}
	data, err := json.Marshal(normalizeYAML(v))
	if err != nil {
		return nil, fmt.Errorf("encode serialized node: %w", err)
	}
	var sn SerializedNode
	if err := json.Unmarshal(data, &sn); err != nil {
		return nil, fmt.Errorf("decode serialized node: %w", err)
	}
	return &sn, nil
}

// normalizeYAML rewrites map[any]any (produced by some YAML decoders for
// non-string keys) into map[string]any so the value can be JSON-encoded.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, elem := range val {
			m[fmt.Sprint(k)] = normalizeYAML(elem)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, elem := range val {
			m[k] = normalizeYAML(elem)
		}
		return m
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeYAML(elem)
		}
		return out
	default:
		return v
	}
}
