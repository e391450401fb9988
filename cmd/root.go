// Package cmd defines the CLI commands for the quoteminer executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "quoteminer",
		Short: "Mines quotes about a set of topics from Reddit discussions.",
		Long: `quoteminer searches a configured set of communities for keyword
matches, fetches each discovered discussion, and extracts scored,
classified quotes into a durable dataset with an optional spreadsheet
mirror.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (YAML)")
	cmd.AddCommand(newRunCmd(&cfgFile))

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
