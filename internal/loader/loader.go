// Package loader reads sensor export files and normalizes them into a
// table.Table through an injected channel mapping.
//
// Supported formats, selected by file extension:
//   - .csv   plain delimited text, optional preamble before the header
//   - .dat   Campbell Scientific TOA5 logger dump
//   - .xlsx  OOXML spreadsheet (first sheet)
//   - .xls   legacy binary spreadsheet (first sheet)
//
// Loading is a single pass and fail-fast: any malformed row yields an
// error and no table, never a partial table. Rows come back in file
// order; chronology problems are reported by table.CheckOrder, not
// repaired here, so diagnostics stay traceable to source row numbers.
package loader

import (
	"path/filepath"
	"strings"

	"github.com/roach88/soilplot/internal/mapping"
	"github.com/roach88/soilplot/internal/table"
)

// Format identifies a supported input file format.
type Format string

const (
	// FormatCSV is plain comma-separated text.
	FormatCSV Format = "csv"

	// FormatTOA5 is the Campbell Scientific TOA5 logger dump (.dat).
	FormatTOA5 Format = "toa5"

	// FormatXLSX is an OOXML spreadsheet.
	FormatXLSX Format = "xlsx"

	// FormatXLS is a legacy binary spreadsheet.
	FormatXLS Format = "xls"
)

// DefaultTimeLayouts are the vendor timestamp layouts accepted when
// Options.TimeLayouts is empty, tried in order.
var DefaultTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Options configures a single load. The zero value uses the default
// mapping (no translations, retain policy) and no preamble skipping.
type Options struct {
	// Mapping translates raw headers to canonical labels. nil means
	// mapping.Default().
	Mapping *mapping.Config

	// SkipRows is the number of preamble lines before the header row.
	// Ignored for TOA5 dumps, whose four-line prologue is fixed by the
	// format.
	SkipRows int

	// TimeLayouts overrides the accepted timestamp layouts.
	TimeLayouts []string
}

// Detect chooses the parser for a path by its extension.
func Detect(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".dat":
		return FormatTOA5, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", &UnsupportedFormatError{Ext: ext}
	}
}

// Info describes the source file itself, independent of its data.
type Info struct {
	// Format is the detected input format.
	Format Format `json:"format"`

	// Station and TableName come from the TOA5 environment line and are
	// empty for other formats.
	Station   string `json:"station,omitempty"`
	TableName string `json:"table_name,omitempty"`
}

// Load reads the file at path and produces a normalized table.
func Load(path string, opts Options) (*table.Table, error) {
	t, _, err := LoadDetailed(path, opts)
	return t, err
}

// LoadDetailed is Load plus source file metadata.
func LoadDetailed(path string, opts Options) (*table.Table, Info, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, Info{}, err
	}
	if opts.Mapping == nil {
		opts.Mapping = mapping.Default()
	}
	if len(opts.TimeLayouts) == 0 {
		opts.TimeLayouts = DefaultTimeLayouts
	}

	var g *grid
	switch format {
	case FormatCSV:
		g, err = readCSV(path, opts.SkipRows)
	case FormatTOA5:
		g, err = readTOA5(path)
	case FormatXLSX:
		g, err = readXLSX(path, opts.SkipRows)
	case FormatXLS:
		g, err = readXLS(path, opts.SkipRows)
	}
	if err != nil {
		return nil, Info{}, err
	}

	t, err := normalize(g, opts)
	if err != nil {
		return nil, Info{}, err
	}
	return t, Info{Format: format, Station: g.station, TableName: g.tableName}, nil
}

// grid is the raw tabular content of a file before normalization: a
// header row, optional per-column units, and data rows tagged with their
// source row numbers.
type grid struct {
	header []string
	units  []string // parallel to header; nil when the format has none
	rows   []record

	// station and tableName come from the TOA5 environment line.
	station   string
	tableName string
}

// record is one data row with its 1-based position in the source file.
type record struct {
	source int
	cells  []string
}
