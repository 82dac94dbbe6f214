package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rewind/internal/store"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored recordings",
		Long: `List the recordings stored in the database, ordered by id.

Examples:
  rewind list
  rewind list --db ./sessions.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database, store.WithLogger(newLogger(opts, cmd.ErrOrStderr())))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	infos, err := st.ListRecordings(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list recordings", err)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeResponse(w, CLIResponse{Status: "ok", Data: infos})
	}

	if len(infos) == 0 {
		fmt.Fprintln(w, "No recordings found in database.")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(w, "%s  %6d event(s)  %s\n", info.ID, info.Events, info.Name)
	}
	return nil
}
