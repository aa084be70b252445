package train

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SavePlot writes the training loss and accuracy curves as an SVG file.
func SavePlot(history *History, filename string) error {
	if history.Len() == 0 {
		return fmt.Errorf("plot: no training records")
	}

	plt, err := newPlot("Training progress", "step")
	if err != nil {
		return err
	}

	lossLine, err := newLine(history, func(r Record) float64 { return r.Loss }, 0)
	if err != nil {
		return err
	}
	accLine, err := newLine(history, func(r Record) float64 { return r.Accuracy }, 1)
	if err != nil {
		return err
	}
	plt.Add(lossLine, accLine)
	plt.Legend.Add("loss", lossLine)
	plt.Legend.Add("accuracy", accLine)

	return writeSVG(plt, filename, 8, 5)
}

func newPlot(title, xLabel string) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, fmt.Errorf("plot: %w", err)
	}
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.X.Padding, p.Y.Padding = 0, 0
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p, nil
}

func newLine(history *History, value func(Record) float64, ix int) (*plotter.Line, error) {
	var pts plotter.XYs
	for _, r := range history.Records() {
		pts = append(pts, struct{ X, Y float64 }{X: float64(r.Step), Y: value(r)})
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("plot: %w", err)
	}
	l.Width = 2
	l.Color = plotutil.Color(ix)
	return l, nil
}

func writeSVG(p *plot.Plot, filename string, w, h float64) error {
	writer, err := p.WriterTo(vg.Inch*vg.Length(w), vg.Inch*vg.Length(h), "svg")
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	defer file.Close()
	if _, err := writer.WriteTo(file); err != nil {
		return fmt.Errorf("plot: write %s: %w", filename, err)
	}
	return nil
}
