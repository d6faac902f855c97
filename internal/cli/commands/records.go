package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trailpack-labs/healthcsv/internal/flatten"
	"github.com/trailpack-labs/healthcsv/internal/sink"
	"github.com/trailpack-labs/healthcsv/internal/source"
)

// RecordsOptions holds options for the records command.
type RecordsOptions struct {
	Type        string
	Output      string
	Materialize bool
}

// NewRecordsCommand creates the records command.
func NewRecordsCommand() *cobra.Command {
	opts := &RecordsOptions{}

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Export all samples of one health record type to CSV",
		Long: `Export samples of a health record type from export.xml.

Fixed columns are startDate, value, unit, and sourceName; every
metadata key observed on any sample becomes an extra column, sorted by
name. The export is scanned twice so rows stream straight to the output
without holding the whole record set in memory; --materialize loads
everything in one pass instead.`,
		Example: `  # Export heart rate samples
  healthcsv records --type HKQuantityTypeIdentifierHeartRate --output heartrate.csv

  # Output name derived from the type (StepCount.csv)
  healthcsv records --type HKQuantityTypeIdentifierStepCount`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecords(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "Health record type to export (required)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output CSV file path (default derived from type)")
	cmd.Flags().BoolVar(&opts.Materialize, "materialize", false, "Load all records in memory instead of two-pass streaming")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runRecords(cmd *cobra.Command, opts *RecordsOptions) error {
	cmdCtx := NewCommandContext(cmd)

	output := opts.Output
	if output == "" {
		output = strings.ReplaceAll(opts.Type, "HKQuantityTypeIdentifier", "") + ".csv"
	}

	store, err := cmdCtx.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.CreateRun("records", opts.Type, output)
	if err != nil {
		return err
	}

	src := source.NewHealthSource(cmdCtx.Cfg.ExportPath, opts.Type)
	out := sink.NewFileCSV(output)
	driver := flatten.NewDriver(cmdCtx.Logger)

	var report *flatten.Report
	var runErr error
	if opts.Materialize {
		report, runErr = driver.Materialize(cmd.Context(), src, out)
	} else {
		report, runErr = driver.Stream(cmd.Context(), src, out)
	}
	if err := out.Close(); err != nil && runErr == nil {
		runErr = err
	}
	finishRun(cmdCtx, store, run, report, runErr)
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %s\n", output, report.Summary())
	return nil
}
