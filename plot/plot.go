// Package plot renders series as dated line charts.
package plot

import (
	"fmt"
	"math"
	"time"

	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/sartorproj/gorates/timeseries"
)

// Default labels used by the rate charts.
const (
	DefaultXLabel = "Date"
	DefaultYLabel = "Exchange rates / close rates"
)

// Range is a fixed axis range.
type Range struct {
	Min float64
	Max float64
}

// Chart describes a line chart and where to save it.
// The image format follows the file extension (png, svg, pdf, ...).
type Chart struct {
	Title  string
	File   string
	XLabel string
	YLabel string
	Y      *Range // nil lets the data decide
	Width  vg.Length
	Height vg.Length
}

// Render draws one line per series, dated along the x axis, and saves the
// chart to c.File.
func Render(c Chart, series ...*timeseries.Series) error {
	p, err := build(c, series)
	if err != nil {
		return err
	}

	width, height := c.Width, c.Height
	if width == 0 {
		width = 8 * vg.Inch
	}
	if height == 0 {
		height = 6 * vg.Inch
	}
	if err := p.Save(width, height, c.File); err != nil {
		return fmt.Errorf("save chart %q: %w", c.Title, err)
	}
	return nil
}

func build(c Chart, series []*timeseries.Series) (*gonumplot.Plot, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("chart %q: no series", c.Title)
	}

	p := gonumplot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = orDefault(c.XLabel, DefaultXLabel)
	p.Y.Label.Text = orDefault(c.YLabel, DefaultYLabel)
	p.X.Tick.Marker = gonumplot.TimeTicks{Format: timeseries.DateLayout}
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.Add(plotter.NewGrid())

	for i, s := range series {
		xys, err := points(s)
		if err != nil {
			return nil, fmt.Errorf("chart %q: %w", c.Title, err)
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("chart %q: series %q: %w", c.Title, s.Label(), err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.Label(), line)
	}

	// Lower right.
	p.Legend.Top = false
	p.Legend.Left = false

	if c.Y != nil {
		p.Y.Min = c.Y.Min
		p.Y.Max = c.Y.Max
	}
	return p, nil
}

// points converts a series into plot coordinates with Unix seconds on x.
func points(s *timeseries.Series) (plotter.XYs, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("series %q has no observations", s.Label())
	}
	xys := make(plotter.XYs, s.Len())
	for i, pt := range s.Points() {
		t, err := time.Parse(timeseries.DateLayout, pt.Date)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Label(), err)
		}
		xys[i].X = float64(t.Unix())
		xys[i].Y = pt.Value
	}
	return xys, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
