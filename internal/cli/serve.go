package cli

import (
	"scoutd/internal/di"

	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the scouting HTTP server.

The server restores the last snapshot (memory driver), serves the scouting
API under webServer.basePath and stops gracefully on SIGINT or SIGTERM.

Example:
  scoutd serve --config ./config.yaml
  scoutd serve -c /etc/scoutd/config.yaml --debug`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := di.InitApp(rootOpts.cliFlags())
			if err != nil {
				return err
			}
			defer cleanup()
			return app.Run(cmd.Context())
		},
	}
}
