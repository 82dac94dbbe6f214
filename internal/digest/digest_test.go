package digest

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rewind/internal/engine"
	"github.com/roach88/rewind/internal/recording"
	"github.com/roach88/rewind/internal/testutil"
)

func TestMarshalCanonical_SortsKeysAndKeepsHTML(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"b": []any{int64(1), 2.5, true},
		"a": "<tag>&",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<tag>&","b":[1,2.5,true]}`, string(got))
}

func TestMarshalCanonical_IntegralFloats(t *testing.T) {
	got, err := MarshalCanonical([]any{800.0, -3.0, 0.1})
	require.NoError(t, err)
	assert.Equal(t, `[800,-3,0.1]`, string(got))
}

func TestMarshalCanonical_RejectsNull(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"a": nil})
	assert.Error(t, err)
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	composed, err := MarshalCanonical("\u00e9")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonical_LineSeparatorsStayLiteral(t *testing.T) {
	got, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(got))

	got, err = MarshalCanonical(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(got))
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// U+FF61 sorts before U+1F600 by UTF-8 bytes but after it by UTF-16
	// code units.
	got, err := MarshalCanonical(map[string]any{"\U0001F600": 1, "\uff61": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":1,\"\uff61\":2}", string(got))
}

func events() []recording.Event {
	b := testutil.NewBuilder()
	text := b.Text("a")
	root := b.El("div", text)

	r := testutil.NewRecorder()
	r.InitialDOM(root)
	r.CharacterData(testutil.ID(text), "b")
	r.Add(recording.TypeMouseMove, 1.5, 2)
	r.Add(recording.TypeTouchStart, 1, 3, 4)
	r.Add(recording.TypeCustomElement, "x-a")
	r.Add(recording.TypeResize, 800, 600)
	return r.Events()
}

func TestSnapshot_DeterministicAcrossEngines(t *testing.T) {
	quiet := engine.WithLogger(slog.New(slog.DiscardHandler))
	evs := events()

	one := engine.New(quiet).Apply(evs)

	// Same state reached in two batches with a reset in between.
	e := engine.New(quiet)
	e.Apply(evs[:3])
	e.Reset()
	e.Apply(evs[:2])
	two := e.Apply(evs[2:])
	require.NotEqual(t, one.Version, two.Version)

	d1, err := Snapshot(one)
	require.NoError(t, err)
	d2, err := Snapshot(two)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)
}

func TestSnapshot_ChangesWithState(t *testing.T) {
	quiet := engine.WithLogger(slog.New(slog.DiscardHandler))
	evs := events()

	e := engine.New(quiet)
	before, err := Snapshot(e.Apply(evs[:1]))
	require.NoError(t, err)
	after, err := Snapshot(e.Apply(evs[1:2]))
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	empty, err := Snapshot(engine.New(quiet).Snapshot())
	require.NoError(t, err)
	assert.NotEqual(t, before, empty)
}
