package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/soilplot/internal/loader"
	"github.com/roach88/soilplot/internal/plot"
	"github.com/roach88/soilplot/internal/table"
)

// PlotResult is the JSON payload of a successful plot run.
type PlotResult struct {
	Output string     `json:"output"`
	Kind   table.Kind `json:"kind"`
	Series []string   `json:"series"`
	Rows   int        `json:"rows"`
}

type plotFlags struct {
	kind   string
	nodes  []string
	group  string
	from   string
	to     string
	ylim   string
	mean   bool
	title  string
	output string
}

// NewPlotCommand creates the plot command.
func NewPlotCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &plotFlags{}

	cmd := &cobra.Command{
		Use:   "plot <file>",
		Short: "Render a time-series chart of selected nodes",
		Long: `Load a sensor export file, select nodes by label or by a named group
from the mapping file, and render a time-series chart. Gaps in the data
are drawn as breaks in the line, never interpolated. The output format
follows the file extension (.png, .svg, .pdf).`,
		Example: `  soilplot plot export.dat -m cw.yaml -k redox -g CW2_80cm -o redox.png
  soilplot plot export.dat -m cw.yaml -k temp -n CW1S1,CW1S2 --mean -o temp.png`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(rootOpts, flags, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&flags.kind, "kind", "k", "redox", "channel kind (redox|temp)")
	cmd.Flags().StringSliceVarP(&flags.nodes, "nodes", "n", nil, "node labels to plot")
	cmd.Flags().StringVarP(&flags.group, "group", "g", "", "named node group from the mapping file")
	cmd.Flags().StringVar(&flags.from, "from", "", "window start (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&flags.to, "to", "", "window end (YYYY-MM-DD, exclusive)")
	cmd.Flags().StringVar(&flags.ylim, "ylim", "", "y-axis range as min:max")
	cmd.Flags().BoolVar(&flags.mean, "mean", false, "plot the mean of the selected nodes")
	cmd.Flags().StringVar(&flags.title, "title", "", "chart title")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output image file (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runPlot(opts *RootOptions, flags *plotFlags, file string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	kind, err := parseKind(flags.kind)
	if err != nil {
		return outputCommandError(formatter, err.Error())
	}

	cfg, err := opts.loadMapping()
	if err != nil {
		return outputCommandError(formatter, err.Error())
	}

	nodes := flags.nodes
	if flags.group != "" {
		members, ok := cfg.Group(flags.group)
		if !ok {
			return outputCommandError(formatter, fmt.Sprintf("unknown node group %q", flags.group))
		}
		nodes = append(nodes, members...)
	}
	if len(nodes) == 0 {
		return outputCommandError(formatter, "no nodes selected: use --nodes or --group")
	}

	buildOpts := plot.Options{Title: flags.title, Mean: flags.mean}
	if buildOpts.From, err = parseBound(flags.from); err != nil {
		return outputCommandError(formatter, err.Error())
	}
	if buildOpts.To, err = parseBound(flags.to); err != nil {
		return outputCommandError(formatter, err.Error())
	}
	if buildOpts.YLimit, err = parseYLimit(flags.ylim); err != nil {
		return outputCommandError(formatter, err.Error())
	}

	tab, err := loader.Load(file, loader.Options{Mapping: cfg, SkipRows: opts.SkipRows})
	if err != nil {
		return outputDataError(formatter, err)
	}

	req, err := plot.Build(tab, nodes, kind, buildOpts)
	if err != nil {
		return outputDataError(formatter, err)
	}

	formatter.VerboseLog("rendering %d series to %s", len(req.Series), flags.output)
	if err := plot.NewImageSurface(flags.output).Render(req); err != nil {
		return outputCommandError(formatter, fmt.Sprintf("render %s: %v", flags.output, err))
	}

	labels := make([]string, len(req.Series))
	for i, s := range req.Series {
		labels[i] = s.Label
	}
	result := &PlotResult{Output: flags.output, Kind: kind, Series: labels, Rows: len(tab.Rows)}
	text := fmt.Sprintf("✓ wrote %s plot (%d series) to %s", kind, len(labels), flags.output)
	return formatter.Success(result, text)
}

// parseKind accepts the channel kind flag, with "temp" as the study's
// usual shorthand.
func parseKind(s string) (table.Kind, error) {
	switch strings.ToLower(s) {
	case "redox":
		return table.KindRedox, nil
	case "temp", "temperature":
		return table.KindTemperature, nil
	}
	return "", fmt.Errorf("invalid kind %q: must be redox or temp", s)
}

// parseBound parses a window bound; empty means unbounded.
func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range loader.DefaultTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or YYYY-MM-DD hh:mm:ss", s)
}

// parseYLimit parses the min:max y-axis range; empty means auto-scale.
func parseYLimit(s string) (*plot.Limits, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid ylim %q: want min:max", s)
	}
	min, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ylim %q: %v", s, err)
	}
	max, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ylim %q: %v", s, err)
	}
	if min >= max {
		return nil, fmt.Errorf("invalid ylim %q: min must be below max", s)
	}
	return &plot.Limits{Min: min, Max: max}, nil
}
