package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/rewind/internal/digest"
	"github.com/roach88/rewind/internal/engine"
	"github.com/roach88/rewind/internal/playback"
	"github.com/roach88/rewind/internal/recording"
	"github.com/roach88/rewind/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Chunk int
}

// ReplayRecordingResult holds the replay result for a single recording.
type ReplayRecordingResult struct {
	RecordingID   string `json:"recording_id"`
	Events        int    `json:"events"`
	Diagnostics   int    `json:"diagnostics"`
	Digest        string `json:"digest"`
	Deterministic bool   `json:"deterministic"`
	Checkpoints   int    `json:"checkpoints"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Recordings       []ReplayRecordingResult `json:"recordings"`
	Total            int                     `json:"total"`
	AllDeterministic bool                    `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [recording-id]",
		Short: "Replay recordings and verify determinism",
		Long: `Replay stored recordings to verify deterministic reconstruction.

Each recording is replayed twice on fresh engines: once in a single batch and
once in chunks. The digests of both final snapshots must match each other
and every digest previously checkpointed for the same position. The digest
is then stored as a checkpoint.

Exit codes:
  0 - All recordings are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, unknown recording, etc.)

Examples:
  rewind replay
  rewind replay 01920b6e-7d1c-7c3a-9f4e-2a51c0de0001
  rewind replay --chunk 16 --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runReplay(opts, id, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Chunk, "chunk", playback.DefaultChunk, "events per batch in the chunked replay")

	return cmd
}

func runReplay(opts *ReplayOptions, id string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Chunk <= 0 {
		return NewExitError(ExitCommandError, "--chunk must be positive")
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	st, err := store.Open(opts.Database, store.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	// Get recordings to process
	var ids []string
	if id != "" {
		ids = []string{id}
	} else {
		infos, err := st.ListRecordings(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list recordings", err)
		}
		for _, info := range infos {
			ids = append(ids, info.ID)
		}
	}

	if len(ids) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, ReplayResult{
				Recordings:       []ReplayRecordingResult{},
				AllDeterministic: true,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No recordings found in database.")
		return nil
	}

	result := ReplayResult{
		Recordings:       make([]ReplayRecordingResult, 0, len(ids)),
		Total:            len(ids),
		AllDeterministic: true,
	}
	for _, rid := range ids {
		rr, err := replayAndVerify(ctx, st, rid, opts.Chunk, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay recording %s", rid), err)
		}
		result.Recordings = append(result.Recordings, rr)
		if !rr.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// replayAndVerify replays a recording twice, compares the digests with each
// other and with stored checkpoints, and records the new checkpoint.
func replayAndVerify(ctx context.Context, st *store.Store, id string, chunk int, logger *slog.Logger) (ReplayRecordingResult, error) {
	rec, err := st.ReadRecording(ctx, id)
	if err != nil {
		return ReplayRecordingResult{}, err
	}

	batch, diagnostics, err := replayBatch(rec, logger)
	if err != nil {
		return ReplayRecordingResult{}, fmt.Errorf("first replay failed: %w", err)
	}
	chunked, err := replayChunked(ctx, rec, chunk, logger)
	if err != nil {
		return ReplayRecordingResult{}, fmt.Errorf("second replay failed: %w", err)
	}

	position := len(rec.Events)
	deterministic := batch == chunked
	if deterministic {
		if _, err := st.WriteCheckpoint(ctx, store.Checkpoint{
			RecordingID: id,
			Position:    position,
			Digest:      batch,
			Diagnostics: diagnostics,
		}); err != nil {
			return ReplayRecordingResult{}, err
		}
	}

	// Any other digest stored for this position means an earlier replay
	// reached a different state.
	digests, err := st.CheckpointsAt(ctx, id, position)
	if err != nil {
		return ReplayRecordingResult{}, err
	}
	for _, d := range digests {
		if d != batch {
			deterministic = false
		}
	}

	return ReplayRecordingResult{
		RecordingID:   id,
		Events:        position,
		Diagnostics:   diagnostics,
		Digest:        batch,
		Deterministic: deterministic,
		Checkpoints:   len(digests),
	}, nil
}

func replayBatch(rec *recording.Recording, logger *slog.Logger) (string, int, error) {
	eng := engine.New(engine.WithLogger(logger))
	ctrl := playback.New(rec.Events, playback.WithEngine(eng), playback.WithLogger(logger))
	snap, err := ctrl.Seek(ctrl.Len())
	if err != nil {
		return "", 0, err
	}
	d, err := digest.Snapshot(snap)
	if err != nil {
		return "", 0, err
	}
	return d, len(eng.Diagnostics()), nil
}

func replayChunked(ctx context.Context, rec *recording.Recording, chunk int, logger *slog.Logger) (string, error) {
	eng := engine.New(engine.WithLogger(logger))
	ctrl := playback.New(rec.Events, playback.WithEngine(eng), playback.WithLogger(logger))
	if err := ctrl.Play(ctx, ctrl.Len(), chunk, func(*engine.Snapshot) bool { return true }); err != nil {
		return "", err
	}
	return digest.Snapshot(ctrl.Snapshot())
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "determinism verification failed",
		}
	}

	if err := writeResponse(cmd.OutOrStdout(), response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d recording(s)\n", result.Total)
	fmt.Fprintln(w)

	for _, rr := range result.Recordings {
		status := "✓"
		if !rr.Deterministic {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Recording: %s\n", status, rr.RecordingID)
		fmt.Fprintf(w, "  Events: %d, diagnostics: %d\n", rr.Events, rr.Diagnostics)
		if verbose {
			fmt.Fprintf(w, "  Digest: %s\n", rr.Digest)
			fmt.Fprintf(w, "  Checkpoints at end: %d\n", rr.Checkpoints)
		}

		if !rr.Deterministic {
			fmt.Fprintln(w, "  Warning: Non-deterministic replay detected!")
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All recordings verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}
