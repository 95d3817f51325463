package values

import (
	"bytes"
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"push_to_gdoc/filler"
)

// Chart describes a line chart. Every series shares the X values.
type Chart struct {
	Title  string    `yaml:"title" json:"title"`
	XLabel string    `yaml:"x_label" json:"x_label"`
	YLabel string    `yaml:"y_label" json:"y_label"`
	X      []float64 `yaml:"x" json:"x"`
	Series []Series  `yaml:"series" json:"series"`
	// Width and Height are in inches; 6x4 when unset.
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Series is one line of a Chart.
type Series struct {
	Label string    `yaml:"label" json:"label"`
	Y     []float64 `yaml:"y" json:"y"`
}

// RenderChart draws c as a PNG image.
func RenderChart(c Chart) (filler.Image, error) {
	if len(c.Series) == 0 || len(c.X) == 0 {
		return filler.Image{}, errors.New("chart has no data")
	}
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Add(plotter.NewGrid())

	for i, s := range c.Series {
		if len(s.Y) != len(c.X) {
			return filler.Image{}, fmt.Errorf("series %d has %d values for %d x values", i, len(s.Y), len(c.X))
		}
		pts := make(plotter.XYs, len(c.X))
		for j := range c.X {
			pts[j].X = c.X[j]
			pts[j].Y = s.Y[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return filler.Image{}, fmt.Errorf("series %d: %w", i, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		if s.Label != "" {
			p.Legend.Add(s.Label, line)
		}
	}

	w, h := c.Width, c.Height
	if w <= 0 {
		w = 6
	}
	if h <= 0 {
		h = 4
	}
	wt, err := p.WriterTo(vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch, "png")
	if err != nil {
		return filler.Image{}, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return filler.Image{}, err
	}
	return filler.Image{Data: buf.Bytes(), MIMEType: "image/png"}, nil
}
