package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/soilplot/internal/loader"
	"github.com/roach88/soilplot/internal/mapping"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	MappingPath string // channel mapping YAML; empty means the default mapping
	SkipRows    int    // preamble lines before the header row
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the soilplot CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "soilplot",
		Short: "Normalize and plot redox/temperature logger exports",
		Long: `soilplot reads environmental sensor export files (.csv, TOA5 .dat
logger dumps, .xlsx or .xls spreadsheets), normalizes them into a uniform
table through a channel mapping, and renders time-series plots of redox
potential and soil temperature.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.MappingPath, "mapping", "m", "", "channel mapping YAML file")
	cmd.PersistentFlags().IntVar(&opts.SkipRows, "skip-rows", 0, "preamble lines before the header row")

	// Add subcommands
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewNormalizeCommand(opts))
	cmd.AddCommand(NewPlotCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newFormatter builds the output formatter for one command run, with a
// fresh run id for JSON correlation.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		RunID:     uuid.Must(uuid.NewV7()).String(),
	}
}

// loadMapping resolves the mapping flag: a file when given, otherwise the
// default mapping (no translations, retain policy).
func (o *RootOptions) loadMapping() (*mapping.Config, error) {
	if o.MappingPath == "" {
		return mapping.Default(), nil
	}
	return mapping.Load(o.MappingPath)
}

// loaderOptions builds loader options from the global flags.
func (o *RootOptions) loaderOptions() (loader.Options, error) {
	cfg, err := o.loadMapping()
	if err != nil {
		return loader.Options{}, err
	}
	return loader.Options{Mapping: cfg, SkipRows: o.SkipRows}, nil
}
