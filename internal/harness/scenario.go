package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rewind/internal/recording"
)

// Scenario is one playback test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Recording is a recording file, relative to the scenario file.
	Recording string `yaml:"recording,omitempty"`

	// Events are appended after the recording's events.
	Events []recording.Event `yaml:"events,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Golden compares the final text projection with a golden file.
	Golden bool `yaml:"golden,omitempty"`

	// Dir is the directory of the scenario file.
	Dir string `yaml:"-"`
}

// Step seeks and then evaluates its assertions.
type Step struct {
	Seek       *int        `yaml:"seek,omitempty"`
	SeekTime   *int64      `yaml:"seek_time,omitempty"`
	End        bool        `yaml:"end,omitempty"`
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Assertion checks one property of a snapshot. Which fields apply depends
// on Type.
type Assertion struct {
	Type string `yaml:"type"`

	// Node is a global node id (node_exists, node_absent, children,
	// attribute, data).
	Node string `yaml:"node,omitempty"`

	// Children is the expected ordered list of child ids.
	Children []string `yaml:"children,omitempty"`

	// Name and Namespace select the attribute.
	Name      string `yaml:"name,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`

	// Value is the expected attribute value.
	Value *string `yaml:"value,omitempty"`

	// Absent expects the attribute or the viewport to be missing.
	Absent bool `yaml:"absent,omitempty"`

	// Data is the expected character data.
	Data *string `yaml:"data,omitempty"`

	// Cursor fields; unset fields are not checked.
	X       *float64 `yaml:"x,omitempty"`
	Y       *float64 `yaml:"y,omitempty"`
	Pressed *bool    `yaml:"pressed,omitempty"`
	Hover   *string  `yaml:"hover,omitempty"`

	// Touches is the expected set of active touches.
	Touches []TouchSpec `yaml:"touches,omitempty"`

	// Elements is the expected list of custom element names.
	Elements []string `yaml:"elements,omitempty"`

	// Width and Height of the viewport.
	Width  *float64 `yaml:"width,omitempty"`
	Height *float64 `yaml:"height,omitempty"`

	// Count of diagnostics, optionally restricted to Code.
	Count *int   `yaml:"count,omitempty"`
	Code  string `yaml:"code,omitempty"`
}

// TouchSpec is an expected active touch.
type TouchSpec struct {
	ID int64   `yaml:"id"`
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
}

// Assertion type constants.
const (
	AssertNodeExists     = "node_exists"
	AssertNodeAbsent     = "node_absent"
	AssertChildren       = "children"
	AssertAttribute      = "attribute"
	AssertData           = "data"
	AssertCursor         = "cursor"
	AssertTouches        = "touches"
	AssertCustomElements = "custom_elements"
	AssertViewport       = "viewport"
	AssertDiagnostics    = "diagnostics"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	scenario.Dir = filepath.Dir(path)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// RecordingPath returns the recording file resolved against the scenario
// directory, or "" when the scenario has none.
func (s *Scenario) RecordingPath() string {
	if s.Recording == "" || filepath.IsAbs(s.Recording) {
		return s.Recording
	}
	return filepath.Join(s.Dir, s.Recording)
}

// GoldenPath returns the golden file of the scenario.
func (s *Scenario) GoldenPath() string {
	return filepath.Join(s.Dir, "golden", s.Name+".golden")
}

// LoadEvents returns the recording's events followed by the inline events.
// Inline events are normalized the way recording files are, so argument
// values have the same types either way.
func (s *Scenario) LoadEvents() ([]recording.Event, error) {
	var events []recording.Event
	if path := s.RecordingPath(); path != "" {
		rec, err := recording.LoadFile(path)
		if err != nil {
			return nil, err
		}
		events = append(events, rec.Events...)
	}
	if len(s.Events) > 0 {
		data, err := recording.Encode(&recording.Recording{Events: s.Events})
		if err != nil {
			return nil, fmt.Errorf("encode inline events: %w", err)
		}
		inline, err := recording.Decode(data, recording.FormatJSON)
		if err != nil {
			return nil, fmt.Errorf("inline events: %w", err)
		}
		events = append(events, inline.Events...)
	}
	return events, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Recording == "" && len(s.Events) == 0 {
		return fmt.Errorf("recording or events is required")
	}
	if path := s.RecordingPath(); path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("recording file not found: %s", path)
		}
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		set := 0
		if step.Seek != nil {
			set++
			if *step.Seek < 0 {
				return fmt.Errorf("steps[%d]: seek must be non-negative", i)
			}
		}
		if step.SeekTime != nil {
			set++
		}
		if step.End {
			set++
		}
		if set != 1 {
			return fmt.Errorf("steps[%d]: exactly one of seek, seek_time or end is required", i)
		}
		for j := range step.Assertions {
			if err := validateAssertion(i, j, &step.Assertions[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(step, index int, a *Assertion) error {
	where := fmt.Sprintf("steps[%d].assertions[%d]", step, index)
	if a.Type == "" {
		return fmt.Errorf("%s: type is required", where)
	}

	switch a.Type {
	case AssertNodeExists, AssertNodeAbsent:
		if a.Node == "" {
			return fmt.Errorf("%s: node is required for %s", where, a.Type)
		}
	case AssertChildren:
		if a.Node == "" {
			return fmt.Errorf("%s: node is required for children", where)
		}
	case AssertAttribute:
		if a.Node == "" || a.Name == "" {
			return fmt.Errorf("%s: node and name are required for attribute", where)
		}
		if (a.Value == nil) == !a.Absent {
			return fmt.Errorf("%s: exactly one of value or absent is required for attribute", where)
		}
	case AssertData:
		if a.Node == "" || a.Data == nil {
			return fmt.Errorf("%s: node and data are required for data", where)
		}
	case AssertCursor:
		if a.X == nil && a.Y == nil && a.Pressed == nil && a.Hover == nil {
			return fmt.Errorf("%s: at least one of x, y, pressed or hover is required for cursor", where)
		}
	case AssertTouches, AssertCustomElements:
		// An empty list asserts that there are none.
	case AssertViewport:
		if (a.Width == nil || a.Height == nil) == !a.Absent {
			return fmt.Errorf("%s: width and height, or absent, are required for viewport", where)
		}
	case AssertDiagnostics:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("%s: non-negative count is required for diagnostics", where)
		}
	default:
		return fmt.Errorf("%s: unknown assertion type %q", where, a.Type)
	}
	return nil
}
