package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// readCSV reads a plain delimited file: skip preamble lines, header row,
// data rows.
func readCSV(path string, skipRows int) (*grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := readRecords(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) <= skipRows {
		return nil, fmt.Errorf("%s: no header row after skipping %d preamble line(s)", path, skipRows)
	}

	g := &grid{header: records[skipRows]}
	for i, cells := range records[skipRows+1:] {
		g.rows = append(g.rows, record{source: skipRows + 2 + i, cells: cells})
	}
	return g, nil
}

// readTOA5 reads a Campbell Scientific TOA5 logger dump. The format has a
// fixed four-line prologue: environment line, field names, units,
// aggregation. Loggers emit the degree sign in Windows-1252, so the byte
// stream is decoded from that code page.
func readTOA5(path string) (*grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoded := transform.NewReader(f, charmap.Windows1252.NewDecoder())
	records, err := readRecords(decoded)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 4 {
		return nil, fmt.Errorf("%s: not a TOA5 dump (want a 4-line prologue, got %d line(s))", path, len(records))
	}
	env := records[0]
	if len(env) == 0 || env[0] != "TOA5" {
		return nil, fmt.Errorf("%s: not a TOA5 dump (environment line starts with %q)", path, firstCell(env))
	}

	g := &grid{
		header: records[1],
		units:  records[2],
		// records[3] is the aggregation line (Avg/Smp/...), unused.
	}
	if len(env) > 1 {
		g.station = env[1]
	}
	if len(env) > 7 {
		g.tableName = env[7]
	}
	for i, cells := range records[4:] {
		g.rows = append(g.rows, record{source: 5 + i, cells: cells})
	}
	return g, nil
}

// readRecords parses comma-separated records without enforcing a uniform
// field count; the TOA5 environment line is shorter than the data rows
// and normalize pads ragged rows.
func readRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

func firstCell(cells []string) string {
	if len(cells) == 0 {
		return ""
	}
	return cells[0]
}
