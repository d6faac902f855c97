package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/trailpack-labs/healthcsv/internal/source"
)

// NewTypesCommand creates the types command.
func NewTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the record types present in the export",
		Example: `  healthcsv types
  healthcsv types --export path/to/export.xml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)

			src := source.NewHealthSource(cmdCtx.Cfg.ExportPath, "")
			types, err := src.ListTypes(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to scan export: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"TYPE", "RECORDS"})
			for _, tc := range types {
				t.AppendRow(table.Row{tc.Type, tc.Count})
			}
			t.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "(%d types)\n", len(types))
			return nil
		},
	}
}
