package loader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/soilplot/internal/mapping"
	"github.com/roach88/soilplot/internal/table"
)

// normalize turns a raw grid into a table: headers mapped through the
// channel mapping, timestamps parsed, values coerced to Reading.
func normalize(g *grid, opts Options) (*table.Table, error) {
	cfg := opts.Mapping

	tsIdx := -1
	for i, cell := range g.header {
		if strings.TrimSpace(cell) == cfg.TimestampColumn {
			tsIdx = i
			break
		}
	}
	if tsIdx < 0 {
		return nil, fmt.Errorf("header row has no %q column (wrong file, or wrong --skip-rows?)", cfg.TimestampColumn)
	}

	columns, keep := mapHeader(g, tsIdx, cfg)

	rows := make([]table.Row, 0, len(g.rows))
	for _, rec := range g.rows {
		cells := rec.cells
		stampCell := ""
		if tsIdx < len(cells) {
			stampCell = strings.TrimSpace(cells[tsIdx])
		}
		stamp, err := parseStamp(stampCell, opts.TimeLayouts)
		if err != nil {
			return nil, &TimestampParseError{RowIndex: rec.source, Value: stampCell}
		}

		readings := make([]table.Reading, len(columns))
		for i, src := range keep {
			cell := ""
			if src < len(cells) {
				cell = strings.TrimSpace(cells[src])
			}
			r, err := coerce(cell, columns[i], rec.source, cfg)
			if err != nil {
				return nil, err
			}
			readings[i] = r
		}
		rows = append(rows, table.Row{Stamp: stamp, SourceRow: rec.source, Readings: readings})
	}

	return table.New(columns, rows)
}

// mapHeader builds the output columns and the parallel list of source
// cell indexes to keep. Dropped columns vanish; unmapped columns follow
// the configured policy.
func mapHeader(g *grid, tsIdx int, cfg *mapping.Config) ([]table.Column, []int) {
	var columns []table.Column
	var keep []int

	for i, cell := range g.header {
		if i == tsIdx {
			continue
		}
		raw := strings.TrimSpace(cell)
		if cfg.Dropped(raw) {
			continue
		}

		var col table.Column
		if ch, ok := cfg.Resolve(raw); ok {
			col = table.Column{Label: ch.Label, Raw: raw, Kind: ch.Kind}
		} else {
			if cfg.Unmapped == mapping.PolicyDrop {
				continue
			}
			col = table.Column{Label: raw, Raw: raw, Kind: table.KindOther, Unmapped: true}
		}

		col.Unit = col.Kind.Unit()
		if i < len(g.units) {
			if u := strings.TrimSpace(g.units[i]); u != "" {
				col.Unit = u
			}
		}

		columns = append(columns, col)
		keep = append(keep, i)
	}
	return columns, keep
}

// parseStamp tries the accepted layouts in order.
func parseStamp(v string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matches %q", v)
}

// coerce turns one cell into a Reading. Empty cells and configured error
// markers become NoData; numbers become Number, with the redox correction
// applied to redox-kind columns; anything else is a malformed value.
func coerce(cell string, col table.Column, source int, cfg *mapping.Config) (table.Reading, error) {
	if cell == "" || cfg.IsErrorMarker(cell) {
		return table.NoData{}, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil, &MalformedValueError{RowIndex: source, Column: col.Label, Value: cell}
	}
	if col.Kind == table.KindRedox {
		v += cfg.RedoxCorrectionMV
	}
	return table.Number(v), nil
}
