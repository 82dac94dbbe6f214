package recording

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError is one schema violation in a recording file.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks raw recording data against the recording schema.
// format is "json" or "yaml". It returns every violation found; a nil
// slice means the data is valid. The error is set only when the data or the
// schema cannot be compiled at all.
//
// A bare event array is validated as a recording holding those events.
func Validate(data []byte, format string) ([]ValidationError, error) {
	if format == FormatYAML {
		generic, err := decodeYAML(data)
		if err != nil {
			return nil, err
		}
		if data, err = json.Marshal(generic); err != nil {
			return nil, fmt.Errorf("re-encode yaml: %w", err)
		}
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		// Wrap in place so reported line numbers still match the input.
		wrapped := make([]byte, 0, len(data)+12)
		wrapped = append(wrapped, `{"events":`...)
		wrapped = append(wrapped, data...)
		data = append(wrapped, '}')
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile recording schema: %w", err)
	}
	value := ctx.CompileBytes(data, cue.Filename("recording."+format))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("parse recording: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Recording")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toValidationErrors(err), nil
	}
	return nil, nil
}

func toValidationErrors(err error) []ValidationError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return []ValidationError{{Path: "recording", Message: err.Error()}}
	}
	out := make([]ValidationError, 0, len(errs))
	for _, e := range errs {
		ve := ValidationError{
			Path:    strings.Join(e.Path(), "."),
			Message: e.Error(),
		}
		if ve.Path == "" {
			ve.Path = "recording"
		}
		ve.Line = dataLine(cueerrors.Positions(e))
		out = append(out, ve)
	}
	return out
}

// dataLine picks the first position inside the recording rather than the
// schema.
func dataLine(positions []token.Pos) int {
	for _, pos := range positions {
		if pos.IsValid() && strings.HasPrefix(pos.Filename(), "recording.") {
			return pos.Line()
		}
	}
	return 0
}
