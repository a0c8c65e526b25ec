// Package plotutil renders training histories as loss/metric curves.
package plotutil

import (
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	gonumplotutil "gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"seriescnn/nn"
)

// PlotHistory writes a per-epoch curve of the loss and every recorded
// metric to path. The image format follows the file extension (.png,
// .svg, .pdf).
func PlotHistory(h *nn.History, title, path string) error {
	if h == nil || h.Epochs == 0 {
		return fmt.Errorf("history is empty, nothing to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "value"
	p.Legend.Top = true

	if err := addSeries(p, 0, "loss", h.Loss); err != nil {
		return err
	}
	// Deterministic legend order.
	names := make([]string, 0, len(h.Metrics))
	for name := range h.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if err := addSeries(p, i+1, name, h.Metrics[name]); err != nil {
			return err
		}
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func addSeries(p *plot.Plot, idx int, name string, values []float64) error {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("building %s series: %w", name, err)
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = gonumplotutil.Color(idx)
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}
