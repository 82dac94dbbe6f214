package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidFiles(t *testing.T) {
	out, _, err := execute(t, "validate", validRecording, validYAML)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+validRecording+": 4 event(s)")
	assert.Contains(t, out, "✓ "+validYAML+": 4 event(s)")
}

func TestValidate_ReportsViolations(t *testing.T) {
	out, _, err := execute(t, "validate", validRecording, invalidRecording)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ "+validRecording)
	assert.Contains(t, out, "✗ "+invalidRecording)
	assert.Contains(t, out, "events.0")
}

func TestValidate_JSON(t *testing.T) {
	out, _, err := execute(t, "validate", invalidRecording, "--format", "json")
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_SCHEMA", resp.Error.Code)
	require.Len(t, resp.Data.Files, 1)
	assert.False(t, resp.Data.Files[0].Valid)
	assert.NotEmpty(t, resp.Data.Files[0].Errors)
}

func TestValidate_UnreadableFile(t *testing.T) {
	_, _, err := execute(t, "validate", "testdata/missing.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate_RequiresArgs(t *testing.T) {
	_, _, err := execute(t, "validate")
	assert.Error(t, err)
}
