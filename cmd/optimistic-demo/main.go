package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "optimistic-demo",
		Short: "Demonstration server for optimistic state updates",
		Long: `optimistic-demo serves a shared counter over WebSocket.

Increments are applied optimistically and broadcast immediately, then
settled against a simulated backend with configurable latency and failure
rate. Watch the pending flag flip in the broadcast frames to see the
optimistic/confirmed cycle, and /metrics for transition counters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
