package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rewind/internal/dom"
	"github.com/roach88/rewind/internal/recording"
)

// ErrNotFound is returned when a recording does not exist.
var ErrNotFound = errors.New("not found")

// RecordingInfo summarizes a stored recording.
type RecordingInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Events int    `json:"events"`
}

// ReadRecording loads a recording with its events ordered by seq.
// Returns ErrNotFound if the recording does not exist.
func (s *Store) ReadRecording(ctx context.Context, id string) (*recording.Recording, error) {
	rec := &recording.Recording{ID: id}
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT name, event_count FROM recordings WHERE id = ?
	`, id).Scan(&rec.Name, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read recording %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read recording %s: %w", id, err)
	}

	events, err := s.readEvents(ctx, id, count)
	if err != nil {
		return nil, fmt.Errorf("read recording %s: %w", id, err)
	}
	rec.Events = events
	return rec, nil
}

func (s *Store) readEvents(ctx context.Context, id string, hint int) ([]recording.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, args, context, timestamp
		FROM events
		WHERE recording_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := make([]recording.Event, 0, hint)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (recording.Event, error) {
	var ev recording.Event
	var typ, args, scope string
	if err := rows.Scan(&typ, &args, &scope, &ev.Timestamp); err != nil {
		return ev, fmt.Errorf("scan event: %w", err)
	}
	decoded, err := recording.DecodeArgs([]byte(args))
	if err != nil {
		return ev, fmt.Errorf("scan event: %w", err)
	}
	ev.Type = recording.Type(typ)
	ev.Args = decoded
	ev.Context = dom.NodeID(scope)
	return ev, nil
}

// ListRecordings returns every stored recording ordered by id.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListRecordings(ctx context.Context) ([]RecordingInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, event_count
		FROM recordings
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	infos := []RecordingInfo{}
	for rows.Next() {
		var info RecordingInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Events); err != nil {
			return nil, fmt.Errorf("list recordings: scan: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	return infos, nil
}

// ReadCheckpoints returns the checkpoints of a recording ordered by position,
// then digest.
func (s *Store) ReadCheckpoints(ctx context.Context, id string) ([]Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recording_id, position, digest, diagnostics
		FROM checkpoints
		WHERE recording_id = ?
		ORDER BY position ASC, digest COLLATE BINARY ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("read checkpoints %s: %w", id, err)
	}
	defer rows.Close()

	cps := []Checkpoint{}
	for rows.Next() {
		var cp Checkpoint
		if err := rows.Scan(&cp.RecordingID, &cp.Position, &cp.Digest, &cp.Diagnostics); err != nil {
			return nil, fmt.Errorf("read checkpoints %s: scan: %w", id, err)
		}
		cps = append(cps, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read checkpoints %s: %w", id, err)
	}
	return cps, nil
}

// CheckpointsAt returns the distinct digests recorded for a position. More
// than one means replays of the recording disagreed.
func (s *Store) CheckpointsAt(ctx context.Context, id string, position int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT digest FROM checkpoints
		WHERE recording_id = ? AND position = ?
		ORDER BY digest COLLATE BINARY ASC
	`, id, position)
	if err != nil {
		return nil, fmt.Errorf("checkpoints at %d: %w", position, err)
	}
	defer rows.Close()

	digests := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("checkpoints at %d: scan: %w", position, err)
		}
		digests = append(digests, d)
	}
	return digests, rows.Err()
}
