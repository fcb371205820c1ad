// Package report renders a recorded run as a six-panel PNG: x, y, theta, delta, v and phi over time
package report

import (
	"bufio"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/lixenwraith/mpc-car/engine"
)

// Page geometry in inches, two columns by three rows
const (
	pageWidth  = 10
	pageHeight = 9
	pageDPI    = 120
	panelCols  = 2
	panelRows  = 3
)

type panel struct {
	title, unit string
	value       func(engine.Sample) float64
}

var panels = [panelRows * panelCols]panel{
	{"x", "scene units", func(s engine.Sample) float64 { return s.State.X }},
	{"y", "scene units", func(s engine.Sample) float64 { return s.State.Y }},
	{"theta", "rad", func(s engine.Sample) float64 { return s.State.Theta }},
	{"delta", "rad", func(s engine.Sample) float64 { return s.State.Delta }},
	{"v", "units/s", func(s engine.Sample) float64 { return s.Action.V }},
	{"phi", "rad/s", func(s engine.Sample) float64 { return s.Action.Phi }},
}

// WritePNG plots the samples against time, dt seconds per tick, into path
func WritePNG(path string, samples []engine.Sample, dt float64) error {
	if len(samples) == 0 {
		return errors.New("no samples to plot")
	}
	if !(dt > 0) {
		return errors.Errorf("time step must be positive, got %v", dt)
	}

	grid := make([][]*plot.Plot, panelRows)
	for r := range grid {
		grid[r] = make([]*plot.Plot, panelCols)
		for c := range grid[r] {
			p, err := newPanel(panels[r*panelCols+c], samples, dt)
			if err != nil {
				return err
			}
			grid[r][c] = p
		}
	}

	img := vgimg.NewWith(
		vgimg.UseWH(pageWidth*vg.Inch, pageHeight*vg.Inch),
		vgimg.UseDPI(pageDPI),
	)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: panelRows, Cols: panelCols,
		PadTop: vg.Points(8), PadBottom: vg.Points(8), PadLeft: vg.Points(8), PadRight: vg.Points(8),
		PadX: vg.Points(16), PadY: vg.Points(16),
	}
	canvases := plot.Align(grid, tiles, dc)
	for r := range grid {
		for c := range grid[r] {
			grid[r][c].Draw(canvases[r][c])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create plot")
	}
	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(bw); err != nil {
		f.Close()
		return errors.Wrap(err, "encode plot")
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return errors.Wrap(err, "write plot")
	}
	return errors.Wrap(f.Close(), "close plot")
}

func newPanel(pn panel, samples []engine.Sample, dt float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = pn.title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = pn.unit
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		// Sample i holds the state after tick i, one step past its start
		pts[i].X = float64(s.Tick+1) * dt
		pts[i].Y = pn.value(s)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrapf(err, "%s series", pn.title)
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	return p, nil
}
