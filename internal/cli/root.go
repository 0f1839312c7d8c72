package cli

import (
	"scoutd/internal/structures"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Debug      bool
}

func (o *RootOptions) cliFlags() *structures.CliFlags {
	return &structures.CliFlags{ConfigPath: o.ConfigPath, DebugMode: o.Debug}
}

// NewRootCommand creates the root command for the scouting daemon.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "scoutd",
		Short: "scoutd - robotics scouting backend",
		Long:  "Collects match and pit scouting forms, coordinates match claims, and exports the results as CSV.",
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config.yaml", "path to the YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "mirror logs to stdout")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}
