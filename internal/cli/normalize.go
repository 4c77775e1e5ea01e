package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/soilplot/internal/loader"
)

// NormalizeResult is the JSON payload of a successful normalize run.
type NormalizeResult struct {
	Output   string   `json:"output"`
	Rows     int      `json:"rows"`
	Columns  []string `json:"columns"`
	Unmapped []string `json:"unmapped,omitempty"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Write a sensor export as canonical CSV",
		Long: `Load a sensor export file through the channel mapping and write the
normalized table as CSV: canonical labels in the header, rows in file
order, gaps written as NAN. Re-normalizing the output reproduces it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(rootOpts, args[0], output, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	return cmd
}

func runNormalize(opts *RootOptions, file, output string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadOpts, err := opts.loaderOptions()
	if err != nil {
		return outputCommandError(formatter, err.Error())
	}

	tab, err := loader.Load(file, loadOpts)
	if err != nil {
		return outputDataError(formatter, err)
	}

	if output == "-" {
		// CSV to stdout is the result itself; the envelope would wrap it,
		// so stdout mode ignores --format json.
		return tab.WriteCSV(cmd.OutOrStdout())
	}

	out, err := os.Create(output)
	if err != nil {
		return outputCommandError(formatter, fmt.Sprintf("create %s: %v", output, err))
	}
	if err := tab.WriteCSV(out); err != nil {
		out.Close()
		return outputCommandError(formatter, fmt.Sprintf("write %s: %v", output, err))
	}
	if err := out.Close(); err != nil {
		return outputCommandError(formatter, fmt.Sprintf("close %s: %v", output, err))
	}

	result := &NormalizeResult{
		Output:   output,
		Rows:     len(tab.Rows),
		Columns:  tab.Labels(),
		Unmapped: tab.UnmappedLabels(),
	}
	text := fmt.Sprintf("✓ wrote %d rows × %d columns to %s", result.Rows, len(result.Columns), output)
	return formatter.Success(result, text)
}
