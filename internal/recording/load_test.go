package recording

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rewind/internal/dom"
)

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatOf("a/b.yaml"))
	assert.Equal(t, FormatYAML, FormatOf("B.YML"))
	assert.Equal(t, FormatJSON, FormatOf("b.json"))
	assert.Equal(t, FormatJSON, FormatOf("noext"))
}

func TestLoadFile_JSONAndYAMLAgree(t *testing.T) {
	fromJSON, err := LoadFile(filepath.Join("testdata", "valid.json"))
	require.NoError(t, err)
	fromYAML, err := LoadFile(filepath.Join("testdata", "valid.yaml"))
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
	assert.Equal(t, "rec-valid", fromJSON.ID)
	require.Len(t, fromJSON.Events, 4)
	assert.Equal(t, TypeInitialDOM, fromJSON.Events[0].Type)
	assert.Equal(t, []any{float64(2), nil, "class", "x"}, fromJSON.Events[2].Args)
	assert.Equal(t, int64(4), fromJSON.Events[3].Timestamp)
}

func TestLoadFile_SerializedNodeDecodes(t *testing.T) {
	rec, err := LoadFile(filepath.Join("testdata", "valid.yaml"))
	require.NoError(t, err)

	sn, err := dom.DecodeSerialized(rec.Events[0].Args[0])
	require.NoError(t, err)
	assert.Equal(t, dom.KindDocument, sn.Kind)
	require.Len(t, sn.Children, 1)
	assert.Equal(t, "div", sn.Children[0].LocalName)
	assert.Equal(t, []dom.SerializedAttr{{Name: "id", Value: "root"}}, sn.Children[0].Attributes)
}

func TestLoadFile_BareArray(t *testing.T) {
	rec, err := LoadFile(filepath.Join("testdata", "bare.json"))
	require.NoError(t, err)
	assert.Empty(t, rec.ID)
	require.Len(t, rec.Events, 2)
	assert.Equal(t, TypeCustomElement, rec.Events[1].Type)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	_, err := Decode([]byte(`{"events": [], "extra": 1}`), FormatJSON)
	assert.Error(t, err)

	_, err = Decode([]byte(`{"events": [{"type": "resize", "when": 3}]}`), FormatJSON)
	assert.Error(t, err)
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := Decode([]byte(`{}`), "toml")
	assert.ErrorContains(t, err, "unsupported")
}

func TestEncode_RoundTrip(t *testing.T) {
	rec := &Recording{
		ID:   "r",
		Name: "n",
		Events: []Event{
			{Type: TypeResize, Args: []any{float64(1), float64(2)}, Timestamp: 3},
			{Type: TypeCharacterData, Args: []any{"4", "x"}, Context: "7"},
		},
	}
	data, err := Encode(rec)
	require.NoError(t, err)

	got, err := Decode(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestEncodeArgs(t *testing.T) {
	data, err := EncodeArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = EncodeArgs([]any{1, nil, "a<b"})
	require.NoError(t, err)

	args, err := DecodeArgs(data)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), nil, "a<b"}, args)

	_, err = DecodeArgs([]byte(`{`))
	assert.Error(t, err)
}
