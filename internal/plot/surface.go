package plot

import (
	"fmt"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/roach88/soilplot/internal/table"
)

// Surface renders a structured plot request. The builder never draws
// anything itself; callers pick a surface.
type Surface interface {
	Render(req *Request) error
}

// ImageSurface renders requests to an image file with gonum/plot. The
// output format follows the file extension (.png, .svg, .pdf, ...).
type ImageSurface struct {
	// Path is the output file.
	Path string

	// Width and Height default to 20cm × 15cm when zero.
	Width, Height vg.Length
}

// NewImageSurface returns a surface writing to path at the default size.
func NewImageSurface(path string) *ImageSurface {
	return &ImageSurface{Path: path}
}

// Render draws the request and saves it. Each series keeps one color
// across its segments; a gap ends the current segment, so missing data
// shows as a break in the line rather than an interpolated bridge.
func (s *ImageSurface) Render(req *Request) error {
	p := gplot.New()
	p.Title.Text = req.Title
	p.X.Label.Text = req.XLabel
	p.Y.Label.Text = req.YLabel
	p.X.Tick.Marker = gplot.TimeTicks{Format: "Jan-2006"}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	if req.YLimit != nil {
		p.Y.Min = req.YLimit.Min
		p.Y.Max = req.YLimit.Max
	}

	for i, series := range req.Series {
		color := plotutil.Color(i)

		var legendLine *plotter.Line
		for _, seg := range segments(series.Points) {
			line, err := plotter.NewLine(seg)
			if err != nil {
				return fmt.Errorf("series %q: %w", series.Label, err)
			}
			line.Color = color
			p.Add(line)
			if legendLine == nil {
				legendLine = line
			}
		}

		if legendLine == nil {
			// All gaps: still get a legend entry so the reader can see
			// the node was requested but has no data in the window.
			line, err := plotter.NewLine(plotter.XYs{})
			if err != nil {
				return fmt.Errorf("series %q: %w", series.Label, err)
			}
			line.Color = color
			legendLine = line
		}
		p.Legend.Add(series.Label, legendLine)
	}

	width, height := s.Width, s.Height
	if width == 0 {
		width = 20 * vg.Centimeter
	}
	if height == 0 {
		height = 15 * vg.Centimeter
	}
	return p.Save(width, height, s.Path)
}

// segments splits a point list into contiguous runs of values. Gaps
// separate runs and are drawn as nothing.
func segments(points []Point) []plotter.XYs {
	var segs []plotter.XYs
	var cur plotter.XYs
	for _, pt := range points {
		v, ok := table.Value(pt.Reading)
		if !ok {
			if len(cur) > 0 {
				segs = append(segs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(pt.Stamp.Unix()), Y: v})
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}
