package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/rewind/internal/recording"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecording creates a recording of n resize events with
// timestamps 1..n.
func createTestRecording(id string, n int) *recording.Recording {
	rec := &recording.Recording{ID: id, Name: "test " + id, Events: []recording.Event{}}
	for i := 1; i <= n; i++ {
		ev := recording.New(recording.TypeResize, i*100, i*10)
		ev.Timestamp = int64(i)
		rec.Events = append(rec.Events, ev)
	}
	return rec
}

func writeTestRecording(t *testing.T, s *Store, id string, n int) *recording.Recording {
	t.Helper()
	rec := createTestRecording(id, n)
	if err := s.WriteRecording(context.Background(), rec); err != nil {
		t.Fatalf("WriteRecording() failed: %v", err)
	}
	return rec
}
