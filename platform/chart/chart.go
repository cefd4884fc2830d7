package chart

import (
	"bytes"
	"fmt"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type figureKind int

const (
	kindBar figureKind = iota
	kindHist
	kindLine
)

type figure struct {
	kind   figureKind
	title  string
	xLabel string
	yLabel string
	labels []string
	values []float64
	xs     []float64
	ys     []float64
	bins   int
}

// Recorder collects at most one figure per query execution. Generated code
// calls Bar/Hist/Line through the sandbox; a later call replaces the figure,
// matching "do the whole chart in one block" in the prompt rules.
type Recorder struct {
	mu  sync.Mutex
	fig *figure
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Bar(title, xLabel, yLabel string, labels []string, values []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fig = &figure{kind: kindBar, title: title, xLabel: xLabel, yLabel: yLabel, labels: labels, values: values}
}

func (r *Recorder) Hist(title, xLabel, yLabel string, values []float64, bins int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fig = &figure{kind: kindHist, title: title, xLabel: xLabel, yLabel: yLabel, values: values, bins: bins}
}

func (r *Recorder) Line(title, xLabel, yLabel string, xs, ys []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fig = &figure{kind: kindLine, title: title, xLabel: xLabel, yLabel: yLabel, xs: xs, ys: ys}
}

func (r *Recorder) HasFigure() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fig != nil
}

// RenderPNG rasterizes the recorded figure.
func (r *Recorder) RenderPNG() ([]byte, error) {
	r.mu.Lock()
	fig := r.fig
	r.mu.Unlock()
	if fig == nil {
		return nil, fmt.Errorf("no figure recorded")
	}

	p := plot.New()
	p.Title.Text = fig.title
	p.X.Label.Text = fig.xLabel
	p.Y.Label.Text = fig.yLabel

	switch fig.kind {
	case kindBar:
		if len(fig.values) == 0 {
			return nil, fmt.Errorf("bar chart has no values")
		}
		bars, err := plotter.NewBarChart(plotter.Values(fig.values), vg.Points(30))
		if err != nil {
			return nil, fmt.Errorf("build bar chart: %w", err)
		}
		p.Add(bars)
		p.NominalX(fig.labels...)
	case kindHist:
		if len(fig.values) == 0 {
			return nil, fmt.Errorf("histogram has no values")
		}
		bins := fig.bins
		if bins <= 0 {
			bins = 10
		}
		h, err := plotter.NewHist(plotter.Values(fig.values), bins)
		if err != nil {
			return nil, fmt.Errorf("build histogram: %w", err)
		}
		p.Add(h)
	case kindLine:
		if len(fig.xs) != len(fig.ys) || len(fig.xs) == 0 {
			return nil, fmt.Errorf("line chart needs matching non-empty xs and ys")
		}
		pts := make(plotter.XYs, len(fig.xs))
		for i := range fig.xs {
			pts[i].X = fig.xs[i]
			pts[i].Y = fig.ys[i]
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("build line chart: %w", err)
		}
		p.Add(l)
	}

	wt, err := p.WriterTo(8*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode chart png: %w", err)
	}
	return buf.Bytes(), nil
}
