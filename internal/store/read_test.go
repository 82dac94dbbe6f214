package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rewind/internal/recording"
)

func TestReadRecording_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	rec := &recording.Recording{
		ID:   "rec-1",
		Name: "frame edit",
		Events: []recording.Event{
			{Type: recording.TypeAttribute, Args: []any{3, nil, "class", "x"}, Timestamp: 1},
			{Type: recording.TypeCharacterData, Args: []any{7, "text"}, Context: "5", Timestamp: 2},
		},
	}
	require.NoError(t, s.WriteRecording(context.Background(), rec))

	got, err := s.ReadRecording(context.Background(), "rec-1")
	require.NoError(t, err)

	assert.Equal(t, "rec-1", got.ID)
	assert.Equal(t, "frame edit", got.Name)
	require.Len(t, got.Events, 2)
	// Numbers come back as JSON numbers.
	assert.Equal(t, []any{float64(3), nil, "class", "x"}, got.Events[0].Args)
	assert.Equal(t, recording.TypeCharacterData, got.Events[1].Type)
	assert.Equal(t, "5", string(got.Events[1].Context))
	assert.Equal(t, int64(2), got.Events[1].Timestamp)
}

func TestReadRecording_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	writeTestRecording(t, s, "rec-1", 20)

	got, err := s.ReadRecording(context.Background(), "rec-1")
	require.NoError(t, err)
	require.Len(t, got.Events, 20)
	for i, ev := range got.Events {
		assert.Equal(t, int64(i+1), ev.Timestamp)
	}
}

func TestReadRecording_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRecording(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadRecording_Empty(t *testing.T) {
	s := createTestStore(t)
	writeTestRecording(t, s, "rec-1", 0)

	got, err := s.ReadRecording(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.NotNil(t, got.Events)
	assert.Empty(t, got.Events)
}

func TestListRecordings(t *testing.T) {
	s := createTestStore(t)

	infos, err := s.ListRecordings(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, infos, "empty store returns empty slice, not nil")
	assert.Empty(t, infos)

	writeTestRecording(t, s, "b", 2)
	writeTestRecording(t, s, "a", 1)
	writeTestRecording(t, s, "B", 0)

	infos, err = s.ListRecordings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []RecordingInfo{
		{ID: "B", Name: "test B", Events: 0},
		{ID: "a", Name: "test a", Events: 1},
		{ID: "b", Name: "test b", Events: 2},
	}, infos)
}

func TestReadCheckpoints_Ordering(t *testing.T) {
	s := createTestStore(t)
	writeTestRecording(t, s, "rec-1", 5)
	ctx := context.Background()

	for _, cp := range []Checkpoint{
		{RecordingID: "rec-1", Position: 5, Digest: "b"},
		{RecordingID: "rec-1", Position: 2, Digest: "z"},
		{RecordingID: "rec-1", Position: 5, Digest: "a"},
	} {
		_, err := s.WriteCheckpoint(ctx, cp)
		require.NoError(t, err)
	}

	cps, err := s.ReadCheckpoints(ctx, "rec-1")
	require.NoError(t, err)
	require.Len(t, cps, 3)
	assert.Equal(t, 2, cps[0].Position)
	assert.Equal(t, "a", cps[1].Digest)
	assert.Equal(t, "b", cps[2].Digest)

	digests, err := s.CheckpointsAt(ctx, "rec-1", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, digests)

	digests, err = s.CheckpointsAt(ctx, "rec-1", 4)
	require.NoError(t, err)
	assert.Empty(t, digests)
}
