// Package plot turns a normalized table into structured plot requests and
// renders them on a surface.
//
// The builder and the surfaces are separate on purpose: a Request carries
// everything a chart needs (series points, labels, units, limits) without
// committing to a rendering backend, and gaps stay explicit all the way to
// the drawing code so missing data is never interpolated away.
package plot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/soilplot/internal/table"
)

// Point is one plotted observation: a timestamp and either a value or a
// gap.
type Point struct {
	Stamp   time.Time
	Reading table.Reading
}

// MarshalJSON renders a point as {"t": ..., "v": ...} with null for gaps.
func (p Point) MarshalJSON() ([]byte, error) {
	out := struct {
		T string        `json:"t"`
		V table.Reading `json:"v"`
	}{T: p.Stamp.UTC().Format(time.RFC3339), V: p.Reading}
	return json.Marshal(out)
}

// Series is one line on the chart.
type Series struct {
	// Label is the canonical node label shown in the legend.
	Label string `json:"label"`

	// Points are in row order, gaps included.
	Points []Point `json:"points"`
}

// Limits is an explicit y-axis range.
type Limits struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Request is a structured chart description handed to a Surface.
type Request struct {
	Title  string     `json:"title,omitempty"`
	Kind   table.Kind `json:"kind"`
	XLabel string     `json:"x_label"`
	YLabel string     `json:"y_label"`
	YLimit *Limits    `json:"y_limit,omitempty"`
	Series []Series   `json:"series"`
}

// Options configures Build.
type Options struct {
	// Title is the chart title; empty leaves the chart untitled.
	Title string

	// From and To bound the plotted time window as [From, To); a zero
	// bound is open.
	From, To time.Time

	// YLimit pins the y-axis range instead of auto-scaling.
	YLimit *Limits

	// Mean replaces the per-node lines with a single mean series. Gaps
	// are excluded from each mean; a stamp where every selected node is
	// a gap stays a gap.
	Mean bool
}

// Build selects the given nodes from the table and produces a Request for
// the requested channel kind. A node label absent from the table is a
// MissingNodeError; nodes are never silently omitted, since a chart
// quietly missing a series would misrepresent data coverage.
func Build(t *table.Table, nodes []string, kind table.Kind, opts Options) (*Request, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no nodes selected")
	}

	indexes := make([]int, len(nodes))
	for i, label := range nodes {
		idx, ok := t.ColumnIndex(label)
		if !ok {
			return nil, &MissingNodeError{Label: label}
		}
		indexes[i] = idx
	}

	windowed := t.Window(opts.From, opts.To)

	req := &Request{
		Title:  opts.Title,
		Kind:   kind,
		XLabel: "Date",
		YLabel: kind.AxisLabel(),
		YLimit: opts.YLimit,
	}

	if opts.Mean {
		req.Series = []Series{meanSeries(windowed, indexes, kind)}
		return req, nil
	}

	for i, label := range nodes {
		s := Series{Label: label, Points: make([]Point, 0, len(windowed.Rows))}
		for _, row := range windowed.Rows {
			s.Points = append(s.Points, Point{Stamp: row.Stamp, Reading: row.Readings[indexes[i]]})
		}
		req.Series = append(req.Series, s)
	}
	return req, nil
}

// meanSeries averages the selected columns row by row, skipping gaps.
func meanSeries(t *table.Table, indexes []int, kind table.Kind) Series {
	s := Series{Label: meanLabel(kind), Points: make([]Point, 0, len(t.Rows))}
	for _, row := range t.Rows {
		sum, n := 0.0, 0
		for _, idx := range indexes {
			if v, ok := table.Value(row.Readings[idx]); ok {
				sum += v
				n++
			}
		}
		var r table.Reading = table.NoData{}
		if n > 0 {
			r = table.Number(sum / float64(n))
		}
		s.Points = append(s.Points, Point{Stamp: row.Stamp, Reading: r})
	}
	return s
}

func meanLabel(kind table.Kind) string {
	switch kind {
	case table.KindTemperature:
		return "Mean temperature"
	case table.KindRedox:
		return "Mean redox potential"
	}
	return "Mean"
}
