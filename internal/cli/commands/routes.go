package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trailpack-labs/healthcsv/internal/flatten"
	"github.com/trailpack-labs/healthcsv/internal/sink"
	"github.com/trailpack-labs/healthcsv/internal/source"
	"github.com/trailpack-labs/healthcsv/internal/state"
)

// RoutesOptions holds options for the routes command.
type RoutesOptions struct {
	Input  string
	Output string
	Jobs   int
}

// NewRoutesCommand creates the routes command.
func NewRoutesCommand() *cobra.Command {
	opts := &RoutesOptions{}

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Extract workout-route GPX files into one CSV",
		Long: `Extract trackpoint data from workout-route GPX files.

Every trackpoint becomes one row: coordinates, elevation, timestamp,
and any sensor extension fields the file carries. Extension fields vary
per file; the union of all of them becomes extra columns, sorted by
name. A file that fails to parse is skipped and reported; the remaining
files are still extracted.`,
		Example: `  # Extract the default export layout
  healthcsv routes

  # Explicit input pattern and output file
  healthcsv routes --input "workout-routes/*.gpx" --output routes.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoutes(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Glob pattern for GPX files (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "gpx_data.csv", "Output CSV file path")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", 0, "Concurrent file parsers (0 = one per CPU)")

	return cmd
}

func runRoutes(cmd *cobra.Command, opts *RoutesOptions) error {
	cmdCtx := NewCommandContext(cmd)

	pattern := opts.Input
	if pattern == "" {
		pattern = cmdCtx.Cfg.RoutesGlob
	}

	store, err := cmdCtx.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.CreateRun("routes", pattern, opts.Output)
	if err != nil {
		return err
	}

	src := source.NewGPXSource(pattern, opts.Jobs)
	out := sink.NewFileCSV(opts.Output)
	driver := flatten.NewDriver(cmdCtx.Logger)

	report, runErr := driver.Materialize(cmd.Context(), src, out)
	if err := out.Close(); err != nil && runErr == nil {
		runErr = err
	}
	finishRun(cmdCtx, store, run, report, runErr)
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %s\n", opts.Output, report.Summary())
	return nil
}

// finishRun copies the report into the run record and persists it.
// State-store failures are logged, never fatal: the extraction itself
// already succeeded or failed on its own terms.
func finishRun(cmdCtx *CommandContext, store state.Store, run *state.Run, report *flatten.Report, runErr error) {
	if report != nil {
		run.UnitsOK = report.UnitsOK
		run.UnitsSkipped = report.UnitsSkipped
		run.RecordsOK = report.RecordsOK
		run.RecordsSkipped = report.RecordsSkipped
		run.Columns = report.Columns
	}
	status := state.RunStatusCompleted
	errMsg := ""
	if runErr != nil {
		status = state.RunStatusFailed
		errMsg = runErr.Error()
	}
	if err := store.CompleteRun(run, status, errMsg); err != nil {
		cmdCtx.Logger.Warn("failed to record run", "error", err)
	}
}
