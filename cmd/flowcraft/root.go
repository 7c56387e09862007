package main

import (
	"github.com/spf13/cobra"
)

// rootFlags holds flags shared by every subcommand.
type rootFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "flowcraft",
		Short:         "Compile durable flow source into a runnable manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "flowcraft.yaml", "Path to the project config file")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newBuildCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
