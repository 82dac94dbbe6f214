package playback

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rewind/internal/engine"
	"github.com/roach88/rewind/internal/recording"
	"github.com/roach88/rewind/internal/testutil"
)

var quiet = slog.New(slog.DiscardHandler)

// sampleEvents builds: load div > [a, comment], then four edits.
func sampleEvents() []recording.Event {
	b := testutil.NewBuilder()
	text := b.Text("a")
	comment := b.Comment("b")
	root := b.El("div", text, comment)

	r := testutil.NewRecorder()
	r.InitialDOM(root)
	r.CharacterData(testutil.ID(comment), "c")
	r.Insert(testutil.ID(root), testutil.ID(comment), b.Text("new"))
	r.Attribute(testutil.ID(root), nil, "class", "x")
	r.Add(recording.TypeResize, 800, 600)
	r.Remove(testutil.ID(text))
	return r.Events()
}

// countingEngine records the timestamp of every event its handlers see.
func countingEngine(seen *[]int64) *engine.Engine {
	reg := engine.DefaultRegistry()
	for typ, route := range reg {
		handle := route.Handle
		route.Handle = func(e *engine.Engine, args engine.Args) error {
			*seen = append(*seen, args.Event.Timestamp)
			return handle(e, args)
		}
		reg[typ] = route
	}
	return engine.New(engine.WithRegistry(reg), engine.WithLogger(quiet))
}

func TestSeek_ForwardAppliesOnlyDelta(t *testing.T) {
	events := sampleEvents()
	var seen []int64
	c := New(events, WithEngine(countingEngine(&seen)), WithLogger(quiet))

	_, err := c.Seek(2)
	require.NoError(t, err)
	seen = nil

	_, err = c.Seek(5)
	require.NoError(t, err)
	assert.Equal(t, []int64{events[2].Timestamp, events[3].Timestamp, events[4].Timestamp}, seen)
	assert.Equal(t, 5, c.Position())
}

func TestSeek_BackwardReplaysFromStart(t *testing.T) {
	events := sampleEvents()
	var seen []int64
	c := New(events, WithEngine(countingEngine(&seen)), WithLogger(quiet))

	_, err := c.Seek(5)
	require.NoError(t, err)
	seen = nil

	snap, err := c.Seek(1)
	require.NoError(t, err)
	assert.Equal(t, []int64{events[0].Timestamp}, seen)

	fresh := engine.New(engine.WithLogger(quiet))
	want := fresh.Apply(events[:1])
	assert.Equal(t, want.Document, snap.Document)
	assert.Nil(t, snap.Viewport)
	assert.Equal(t, 1, c.Engine().Applied())
}

func TestSeek_SamePositionIsNoOp(t *testing.T) {
	c := New(sampleEvents(), WithLogger(quiet))
	first, err := c.Seek(3)
	require.NoError(t, err)

	again, err := c.Seek(3)
	require.NoError(t, err)
	assert.Same(t, first, again)
}

func TestSeek_OutOfRange(t *testing.T) {
	c := New(sampleEvents(), WithLogger(quiet))

	_, err := c.Seek(-1)
	assert.Error(t, err)
	_, err = c.Seek(c.Len() + 1)
	assert.Error(t, err)
	assert.Equal(t, 0, c.Position())
}

func TestSeek_EndStateMatchesSingleApply(t *testing.T) {
	events := sampleEvents()
	c := New(events, WithLogger(quiet))

	for _, k := range []int{3, 1, 6, 2, 6} {
		_, err := c.Seek(k)
		require.NoError(t, err)
	}

	want := engine.New(engine.WithLogger(quiet)).Apply(events)
	got := c.Snapshot()
	assert.Equal(t, want.Document, got.Document)
	assert.Equal(t, want.Viewport, got.Viewport)
}

func TestNew_SortsByTimestampStably(t *testing.T) {
	events := []recording.Event{
		{Type: recording.TypeResize, Args: []any{1, 1}, Timestamp: 20},
		{Type: recording.TypeResize, Args: []any{2, 2}, Timestamp: 10},
		{Type: recording.TypeResize, Args: []any{3, 3}, Timestamp: 20},
	}
	c := New(events, WithLogger(quiet))

	ordered := c.Events()
	assert.Equal(t, []any{2, 2}, ordered[0].Args)
	assert.Equal(t, []any{1, 1}, ordered[1].Args)
	assert.Equal(t, []any{3, 3}, ordered[2].Args)
	assert.Equal(t, int64(20), events[0].Timestamp, "input is not reordered")

	snap, err := c.Seek(3)
	require.NoError(t, err)
	assert.Equal(t, &engine.Size{Width: 3, Height: 3}, snap.Viewport)
}

func TestSeekTime(t *testing.T) {
	events := sampleEvents() // timestamps 1..6
	c := New(events, WithLogger(quiet))

	assert.Equal(t, 0, c.IndexAt(0))
	assert.Equal(t, 3, c.IndexAt(3))
	assert.Equal(t, 6, c.IndexAt(100))

	snap, err := c.SeekTime(5)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Position())
	require.NotNil(t, snap.Viewport)

	_, err = c.SeekTime(0)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Position())
	assert.Nil(t, c.Snapshot().Document)
}

func TestPlay_YieldsPerChunk(t *testing.T) {
	c := New(sampleEvents(), WithLogger(quiet))

	var positions []int
	err := c.Play(context.Background(), 5, 2, func(*engine.Snapshot) bool {
		positions = append(positions, c.Position())
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 5}, positions)
}

func TestPlay_StopsWhenYieldReturnsFalse(t *testing.T) {
	c := New(sampleEvents(), WithLogger(quiet))

	calls := 0
	err := c.Play(context.Background(), 6, 1, func(*engine.Snapshot) bool {
		calls++
		return calls < 2
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, c.Position())
}

func TestPlay_HonoursCancellation(t *testing.T) {
	c := New(sampleEvents(), WithLogger(quiet))
	ctx, cancel := context.WithCancel(context.Background())

	err := c.Play(ctx, 6, 1, func(*engine.Snapshot) bool {
		cancel()
		return true
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, c.Position(), "cancellation is checked between chunks")
}

func TestPlay_BackwardTargetRestarts(t *testing.T) {
	c := New(sampleEvents(), WithLogger(quiet))
	_, err := c.Seek(6)
	require.NoError(t, err)

	var positions []int
	err = c.Play(context.Background(), 3, 10, func(*engine.Snapshot) bool {
		positions = append(positions, c.Position())
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, positions)
}
