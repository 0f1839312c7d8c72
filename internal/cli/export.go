package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"scoutd/internal/di"
	"scoutd/internal/export"

	"github.com/spf13/cobra"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <matchscout|pitscout>",
		Short: "Write a CSV sheet without starting the server",
		Long: `Write the match or pit scouting sheet as CSV.

Rows come from the configured store. With the memory driver the last
snapshot file is loaded first.

Example:
  scoutd export matchscout -o matchscout_data.csv
  scoutd export pitscout > pit.csv`,
		Args:          cobra.ExactArgs(1),
		ValidArgs:     []string{export.MatchSheet.Kind, export.PitSheet.Kind},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(opts *ExportOptions, kind string, cmd *cobra.Command) error {
	if _, ok := export.SheetFor(kind); !ok {
		return fmt.Errorf("invalid sheet %q: must be %s or %s", kind, export.MatchSheet.Kind, export.PitSheet.Kind)
	}

	exporter, cleanup, err := di.InitExporter(opts.cliFlags())
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.Output == "" {
		_, err = exporter.Export(cmd.Context(), kind, cmd.OutOrStdout())
		return exportError(kind, err)
	}

	// A failed export never leaves a partial file at opts.Output.
	tmp, err := os.CreateTemp(filepath.Dir(opts.Output), filepath.Base(opts.Output)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := exporter.Export(cmd.Context(), kind, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return exportError(kind, err)
	}
	if err = os.Rename(tmp.Name(), opts.Output); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", n, opts.Output)
	return nil
}

func exportError(kind string, err error) error {
	if errors.Is(err, export.ErrNoRecords) {
		return fmt.Errorf("no %s data found: %w", kind, err)
	}
	return err
}
