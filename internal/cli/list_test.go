package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rewind/internal/store"
)

func TestList_Empty(t *testing.T) {
	out, _, err := execute(t, "list", "--db", tempDB(t))
	require.NoError(t, err)
	assert.Equal(t, "No recordings found in database.\n", out)
}

func TestList_JSONOrderedByID(t *testing.T) {
	db := tempDB(t)
	importFile(t, db, listRecording, "b")
	importFile(t, db, validRecording, "a")

	out, _, err := execute(t, "list", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string                `json:"status"`
		Data   []store.RecordingInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []store.RecordingInfo{
		{ID: "a", Name: "valid", Events: 4},
		{ID: "b", Name: "list", Events: 5},
	}, resp.Data)
}

func TestList_JSONEmptyIsArray(t *testing.T) {
	out, _, err := execute(t, "list", "--db", tempDB(t), "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"data": []`)
}
