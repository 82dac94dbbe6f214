package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rewind/internal/recording"
)

// FileValidation holds the validation result of one recording file.
type FileValidation struct {
	File   string                      `json:"file"`
	Valid  bool                        `json:"valid"`
	Events int                         `json:"events,omitempty"`
	Errors []recording.ValidationError `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate recording files without importing them",
		Long: `Validate JSON or YAML recording files against the recording schema.

Every violation is reported with its path and, where known, its line.

Exit codes:
  0 - All files are valid
  1 - One or more files have schema violations
  2 - Command error (unreadable or unparsable file)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		fv, err := validateFile(file)
		if err != nil {
			if opts.Format == "json" {
				_ = formatter.Error("E_PARSE", err.Error(), map[string]string{"file": file})
			}
			return WrapExitError(ExitCommandError, file, err)
		}
		formatter.VerboseLog("Validated %s: %d event(s), %d violation(s)", file, fv.Events, len(fv.Errors))
		result.Files = append(result.Files, fv)
		if !fv.Valid {
			result.Valid = false
		}
	}

	if result.Valid {
		return outputValidateSuccess(formatter, result)
	}
	if err := outputViolations(formatter, result.Files); err != nil {
		return err
	}
	return NewExitError(ExitFailure, "validation failed")
}

func validateFile(file string) (FileValidation, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return FileValidation{}, fmt.Errorf("read recording: %w", err)
	}
	format := recording.FormatOf(file)

	violations, err := recording.Validate(data, format)
	if err != nil {
		return FileValidation{}, err
	}
	fv := FileValidation{File: file, Valid: len(violations) == 0, Errors: violations}
	if fv.Valid {
		rec, err := recording.Decode(data, format)
		if err != nil {
			return FileValidation{}, err
		}
		fv.Events = len(rec.Events)
	}
	return fv, nil
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	for _, fv := range result.Files {
		fmt.Fprintf(formatter.Writer, "✓ %s: %d event(s)\n", fv.File, fv.Events)
	}
	return nil
}

// outputViolations reports schema violations. Valid files in the list are
// reported too, so the text output covers every file checked.
func outputViolations(formatter *OutputFormatter, files []FileValidation) error {
	if formatter.Format == "json" {
		return writeResponse(formatter.Writer, CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Files: files},
			Error: &CLIError{
				Code:    "E_SCHEMA",
				Message: "recording failed schema validation",
			},
		})
	}

	w := formatter.Writer
	for _, fv := range files {
		if len(fv.Errors) == 0 {
			fmt.Fprintf(w, "✓ %s: %d event(s)\n", fv.File, fv.Events)
			continue
		}
		fmt.Fprintf(w, "✗ %s: %d violation(s)\n", fv.File, len(fv.Errors))
		for _, e := range fv.Errors {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
	return nil
}
