package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/rewind/internal/render"
)

// ErrGoldenMismatch is returned by CheckGolden when the projection differs
// from the golden file.
var ErrGoldenMismatch = errors.New("golden file mismatch")

// Projection renders the final snapshot of result for golden comparison.
func Projection(result *Result) []byte {
	return []byte(render.Text(result.Final))
}

// RunWithGolden executes a scenario and compares the final text projection
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the projection doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Projection(result))
	return result, nil
}

// CheckGolden compares the projection of result with the scenario's golden
// file, or writes it when update is set. It is the non-test counterpart of
// RunWithGolden, used by the CLI.
func CheckGolden(scenario *Scenario, result *Result, update bool) error {
	path := scenario.GoldenPath()
	got := Projection(result)

	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create golden dir: %w", err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			return fmt.Errorf("write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read golden file: %w", err)
	}
	if !bytes.Equal(want, got) {
		return fmt.Errorf("%s: %w", path, ErrGoldenMismatch)
	}
	return nil
}
