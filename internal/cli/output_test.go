package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(ImportResult{ID: "r1", Name: "checkout", Events: 12})
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ImportResult{ID: "r1", Name: "checkout", Events: 12}, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E_PARSE", "unexpected end of input", map[string]string{"file": "session.json"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_PARSE", resp.Error.Code)
	assert.Equal(t, "unexpected end of input", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Success("✓ Imported r1"))
	assert.Equal(t, "✓ Imported r1\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			err := formatter.Error("E_SCHEMA", "recording failed schema validation", []string{"events[0].type"})
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "Error [E_SCHEMA]: recording failed schema validation")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details:")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("Validated %s", "session.json")
	assert.Empty(t, out.String())
	assert.Equal(t, "Validated session.json\n", errOut.String())

	formatter.Verbose = false
	formatter.VerboseLog("dropped")
	assert.Equal(t, "Validated session.json\n", errOut.String())
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitFailure},
		{"failure", NewExitError(ExitFailure, "validation failed"), ExitFailure},
		{"command error", WrapExitError(ExitCommandError, "open", errors.New("denied")), ExitCommandError},
		{"wrapped", fmt.Errorf("run: %w", NewExitError(ExitCommandError, "x")), ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	cause := errors.New("no such table")
	err := WrapExitError(ExitCommandError, "failed to list recordings", cause)
	assert.Equal(t, "failed to list recordings: no such table", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "seek failed", NewExitError(ExitCommandError, "seek failed").Error())
}
