package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"

	"lead-insights/internal/export"
	"lead-insights/internal/leads"
	"lead-insights/internal/visuals"
)

var (
	reportFormat  string
	reportRefresh bool

	exportColumns string
	exportMoves   []string
	exportOut     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the lead analytics as Mermaid charts or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if reportRefresh {
			if _, err := s.dash.Refresh(ctx); err != nil {
				return err
			}
		}
		res, err := s.dash.Analyze(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch reportFormat {
		case "mermaid", "md":
			_, err = fmt.Fprintln(out, visuals.Report(res))
		case "json":
			err = writeIndented(out, res)
		case "kpis":
			err = writeIndented(out, res.KPIs)
		default:
			return fmt.Errorf("unknown report format %q (want mermaid, json or kpis)", reportFormat)
		}
		return err
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the lead snapshot as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		cols, err := exportColumnSet(s.columns, exportColumns, exportMoves)
		if err != nil {
			return err
		}

		ls, _, err := s.dash.Leads(cmd.Context())
		if err != nil {
			return err
		}

		if exportOut == "" || exportOut == "-" {
			return export.WriteCSV(cmd.OutOrStdout(), ls, cols)
		}
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		if err := export.WriteCSV(f, ls, cols); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of a lead record as accepted by file and REST sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := jsonschema.For[leads.Record](nil)
		if err != nil {
			return fmt.Errorf("failed to infer lead schema: %w", err)
		}
		schema.Title = "Lead"
		return writeIndented(cmd.OutOrStdout(), schema)
	},
}

// exportColumnSet applies the --columns override and then any --move reorderings.
func exportColumnSet(base export.Columns, list string, moves []string) (export.Columns, error) {
	cols := base
	if list != "" {
		parsed, err := export.ParseList(list)
		if err != nil {
			return nil, err
		}
		cols = parsed
	}
	if len(cols) == 0 {
		cols = export.DefaultColumns()
	}
	return cols.ApplyMoves(moves...)
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "mermaid", "output format: mermaid, json or kpis")
	reportCmd.Flags().BoolVar(&reportRefresh, "refresh", false, "refetch leads instead of using the cached snapshot")

	exportCmd.Flags().StringVar(&exportColumns, "columns", "", "comma separated column keys (default: EXPORT_COLUMNS_FILE or all columns)")
	exportCmd.Flags().StringArrayVar(&exportMoves, "move", nil, "reorder a column as from:to, where from is an index or key and to an index (repeatable)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
}
