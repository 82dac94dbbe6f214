package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rewind/internal/recording"
	"github.com/roach88/rewind/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	HTML bool
	ID   string
	Name string

	// IDs generates recording ids. Tests substitute a fixed generator.
	IDs recording.IDGenerator
}

// ImportResult describes an imported recording.
type ImportResult struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Events int    `json:"events"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts, IDs: recording.UUIDv7Generator{}}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a recording and store it",
		Long: `Validate a JSON or YAML recording file against the recording schema and
store it in the database.

With --html the file is parsed as an HTML document instead, and stored as a
recording holding a single initial document event.

Recordings without an id get a time-ordered UUIDv7.

Exit codes:
  0 - Recording stored
  1 - Recording failed schema validation
  2 - Command error (unreadable file, duplicate id, database error)

Examples:
  rewind import session.json
  rewind import session.yaml --name checkout
  rewind import page.html --html --id home`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.HTML, "html", false, "parse the file as an HTML document")
	cmd.Flags().StringVar(&opts.ID, "id", "", "recording id (overrides the file)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "recording name (overrides the file)")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var rec *recording.Recording
	var err error
	if opts.HTML {
		rec, err = loadHTML(path)
	} else {
		rec, err = loadValidated(path, formatter)
	}
	if err != nil {
		return err
	}

	if opts.ID != "" {
		rec.ID = opts.ID
	}
	if opts.Name != "" {
		rec.Name = opts.Name
	}
	if rec.Name == "" {
		rec.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	recording.EnsureID(rec, opts.IDs)

	st, err := store.Open(opts.Database, store.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if err := st.WriteRecording(context.Background(), rec); err != nil {
		if errors.Is(err, store.ErrDuplicateRecording) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("recording %s already imported", rec.ID), err)
		}
		return WrapExitError(ExitCommandError, "failed to store recording", err)
	}

	result := ImportResult{ID: rec.ID, Name: rec.Name, Events: len(rec.Events)}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("✓ Imported %s (%s): %d event(s)", result.ID, result.Name, result.Events))
}

func loadHTML(path string) (*recording.Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open HTML file", err)
	}
	defer f.Close()

	ev, err := recording.FromHTML(f)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to convert HTML", err)
	}
	return &recording.Recording{Events: []recording.Event{ev}}, nil
}

// loadValidated reads a recording file, reporting schema violations before
// decoding it.
func loadValidated(path string, formatter *OutputFormatter) (*recording.Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read recording", err)
	}
	format := recording.FormatOf(path)

	violations, err := recording.Validate(data, format)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to parse recording", err)
	}
	if len(violations) > 0 {
		if err := outputViolations(formatter, []FileValidation{{File: path, Errors: violations}}); err != nil {
			return nil, err
		}
		return nil, NewExitError(ExitFailure, fmt.Sprintf("%s: %d schema violation(s)", path, len(violations)))
	}

	rec, err := recording.Decode(data, format)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to decode recording", err)
	}
	return rec, nil
}
