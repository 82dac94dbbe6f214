package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rewind/internal/recording"
)

// ErrDuplicateRecording is returned when a recording id is already stored.
// Recordings are immutable once imported.
var ErrDuplicateRecording = errors.New("recording already exists")

// Checkpoint is the digest of the state reached by replaying a recording up
// to Position.
type Checkpoint struct {
	RecordingID string
	Position    int
	Digest      string
	Diagnostics int
}

// WriteRecording stores rec and its events in one transaction. Events are
// numbered in slice order starting at 0.
//
// rec.ID must be set; see recording.EnsureID.
func (s *Store) WriteRecording(ctx context.Context, rec *recording.Recording) error {
	if rec.ID == "" {
		return fmt.Errorf("write recording: empty id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write recording: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM recordings WHERE id = ?`, rec.ID).Scan(&exists)
	switch {
	case err == nil:
		return fmt.Errorf("write recording %s: %w", rec.ID, ErrDuplicateRecording)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("write recording %s: %w", rec.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO recordings (id, name, event_count)
		VALUES (?, ?, ?)
	`, rec.ID, rec.Name, len(rec.Events)); err != nil {
		return fmt.Errorf("write recording %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (recording_id, seq, type, args, context, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write recording %s: prepare: %w", rec.ID, err)
	}
	defer stmt.Close()

	for seq, ev := range rec.Events {
		args, err := recording.EncodeArgs(ev.Args)
		if err != nil {
			return fmt.Errorf("write recording %s: event %d: %w", rec.ID, seq, err)
		}
		if _, err := stmt.ExecContext(ctx,
			rec.ID,
			seq,
			string(ev.Type),
			string(args),
			string(ev.Context),
			ev.Timestamp,
		); err != nil {
			return fmt.Errorf("write recording %s: event %d: %w", rec.ID, seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write recording %s: commit: %w", rec.ID, err)
	}

	s.logger.Debug("recording stored",
		"recording", rec.ID,
		"events", len(rec.Events),
	)
	return nil
}

// DeleteRecording removes a recording with its events and checkpoints.
// Returns ErrNotFound if no such recording exists.
func (s *Store) DeleteRecording(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recording %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recording %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete recording %s: %w", id, ErrNotFound)
	}
	return nil
}

// WriteCheckpoint records a replay digest.
// Uses ON CONFLICT DO NOTHING for idempotency - writing the same digest for
// the same position again is silently ignored. Returns true when a new row
// was inserted.
//
// Note: The referenced recording must exist (foreign key constraint).
func (s *Store) WriteCheckpoint(ctx context.Context, cp Checkpoint) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (recording_id, position, digest, diagnostics)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, cp.RecordingID, cp.Position, cp.Digest, cp.Diagnostics)
	if err != nil {
		return false, fmt.Errorf("write checkpoint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write checkpoint: %w", err)
	}
	if n > 0 {
		s.logger.Debug("checkpoint stored",
			"recording", cp.RecordingID,
			"position", cp.Position,
			"digest", cp.Digest,
		)
	}
	return n > 0, nil
}
