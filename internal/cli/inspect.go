package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/soilplot/internal/loader"
	"github.com/roach88/soilplot/internal/table"
)

// InspectReport summarizes a loaded export file.
type InspectReport struct {
	File     string            `json:"file"`
	Format   loader.Format     `json:"format"`
	Station  string            `json:"station,omitempty"`
	Table    string            `json:"logger_table,omitempty"`
	Rows     int               `json:"rows"`
	Columns  []table.Column    `json:"columns"`
	Unmapped []string          `json:"unmapped,omitempty"`
	Order    table.OrderReport `json:"order"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a sensor export file",
		Long: `Load a sensor export file through the channel mapping and report its
shape: detected format, row count, columns with kinds and units, mapping
gaps, and timestamp ordering problems. Nothing is written.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}
}

func runInspect(opts *RootOptions, file string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadOpts, err := opts.loaderOptions()
	if err != nil {
		return outputCommandError(formatter, err.Error())
	}

	formatter.VerboseLog("loading %s", file)
	tab, info, err := loader.LoadDetailed(file, loadOpts)
	if err != nil {
		return outputDataError(formatter, err)
	}

	report := &InspectReport{
		File:     file,
		Format:   info.Format,
		Station:  info.Station,
		Table:    info.TableName,
		Rows:     len(tab.Rows),
		Columns:  tab.Columns,
		Unmapped: tab.UnmappedLabels(),
		Order:    tab.CheckOrder(),
	}
	return formatter.Success(report, inspectText(report))
}

func inspectText(r *InspectReport) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s (%s", r.File, r.Format)
	if r.Station != "" {
		fmt.Fprintf(b, ", station %s", r.Station)
	}
	if r.Table != "" {
		fmt.Fprintf(b, ", table %s", r.Table)
	}
	fmt.Fprintf(b, ")\n")
	fmt.Fprintf(b, "%d rows, %d columns\n", r.Rows, len(r.Columns))

	for _, c := range r.Columns {
		fmt.Fprintf(b, "  %-12s %-12s", c.Label, c.Kind)
		if c.Unit != "" {
			fmt.Fprintf(b, " [%s]", c.Unit)
		}
		if c.Unmapped {
			fmt.Fprintf(b, " (unmapped)")
		}
		fmt.Fprintln(b)
	}

	if len(r.Unmapped) > 0 {
		fmt.Fprintf(b, "warning: %d header(s) not covered by the mapping: %s\n",
			len(r.Unmapped), strings.Join(r.Unmapped, ", "))
	}

	switch {
	case r.Order.Clean():
		fmt.Fprintf(b, "✓ timestamps strictly chronological")
	default:
		fmt.Fprintf(b, "✗ timestamp order problems: %d out of order, %d duplicate(s)",
			len(r.Order.OutOfOrder), len(r.Order.Duplicates))
	}
	return b.String()
}
