package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Timezone database for hosts without one
	_ "time/tzdata"
)

var (
	configFile string
	version    = "dev"
)

func main() {
	rootCommand := newRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "interlinear",
		Short:         "Spaced-repetition review service for Interlinear flashcards",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML configuration file")

	rootCommand.AddCommand(newServeCommand())
	rootCommand.AddCommand(newMigrateCommand())
	rootCommand.AddCommand(newStatsCommand())

	return rootCommand
}
