package cli

import (
	"bytes"
	"path/filepath"
	"testing"
)

const (
	validRecording   = "../recording/testdata/valid.json"
	validYAML        = "../recording/testdata/valid.yaml"
	invalidRecording = "../recording/testdata/invalid.json"
	listRecording    = "../harness/testdata/scenarios/recordings/list.json"
	scenariosDir     = "../harness/testdata/scenarios"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// tempDB returns a database path inside a fresh temp dir.
func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "rewind.db")
}

// importFile imports path into db under id and fails the test on error.
func importFile(t *testing.T, db, path, id string, extra ...string) {
	t.Helper()
	args := append([]string{"import", path, "--db", db, "--id", id}, extra...)
	if _, _, err := execute(t, args...); err != nil {
		t.Fatalf("import %s: %v", path, err)
	}
}
