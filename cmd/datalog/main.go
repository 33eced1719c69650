// Command datalog drives the engine from the terminal: it parses program
// files, saturates them bottom-up or answers queries top-down, and formats
// the results.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:           "datalog",
		Short:         "Datalog reasoning engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.AddCommand(newRunCmd(&verbose))
	cmd.AddCommand(newQueryCmd(&verbose))
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}
