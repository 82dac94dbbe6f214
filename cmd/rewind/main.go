// Command rewind imports recorded page sessions and rebuilds their document
// state at any point in the event stream.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/rewind/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "rewind:", err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
