package recording

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Recording file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatOf infers the file format from its extension. Unknown extensions are
// treated as JSON.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFile reads and decodes a recording file.
func LoadFile(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	rec, err := Decode(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Decode parses recording data. A bare JSON/YAML array is accepted as a
// recording without id or name.
func Decode(data []byte, format string) (*Recording, error) {
	var generic any
	var err error
	switch format {
	case FormatYAML:
		generic, err = decodeYAML(data)
	case FormatJSON:
		err = json.Unmarshal(data, &generic)
	default:
		return nil, fmt.Errorf("unsupported recording format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode recording: %w", err)
	}

	if list, ok := generic.([]any); ok {
		generic = map[string]any{"events": list}
	}
	// Round-trip through JSON so both formats share one decoding path and
	// argument values have the same Go types.
	normalized, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("normalize recording: %w", err)
	}
	var rec Recording
	dec := json.NewDecoder(bytes.NewReader(normalized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode recording: %w", err)
	}
	return &rec, nil
}

// Encode renders rec as indented JSON.
func Encode(rec *Recording) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}

// EncodeArgs renders the args of one event as JSON, for storage.
func EncodeArgs(args []any) ([]byte, error) {
	if args == nil {
		args = []any{}
	}
	return json.Marshal(args)
}

// DecodeArgs is the inverse of EncodeArgs.
func DecodeArgs(data []byte) ([]any, error) {
	var args []any
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, fmt.Errorf("decode args: %w", err)
	}
	return args, nil
}

func decodeYAML(data []byte) (any, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return generic, nil
}
