package charts

import (
	"bytes"
	"fmt"
	"math"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const dpi = vgimg.DefaultDPI

func newPlot(req domain.ChartRequest) *plot.Plot {
	p := plot.New()
	p.Title.Text = req.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = req.XLabel
	p.Y.Label.Text = req.YLabel
	return p
}

func rotateXLabels(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

func values(points []domain.MetricPoint) plotter.Values {
	vs := make(plotter.Values, len(points))
	for i, pt := range points {
		vs[i] = float64(pt.Value)
	}
	return vs
}

func int64Values(in []int64) plotter.Values {
	vs := make(plotter.Values, len(in))
	for i, v := range in {
		vs[i] = float64(v)
	}
	return vs
}

// barWidth spreads n bars over about 60% of the available length.
func barWidth(length vg.Length, n int) vg.Length {
	if n < 1 {
		n = 1
	}
	w := length * 0.6 / vg.Length(n)
	if w > vg.Points(60) {
		w = vg.Points(60)
	}
	if w < vg.Points(2) {
		w = vg.Points(2)
	}
	return w
}

func encode(p *plot.Plot, size Size) ([]byte, error) {
	wt, err := p.WriterTo(size.Width, size.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("create png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func checkMetric(req domain.ChartRequest) error {
	if req.Metric.IsEmpty() {
		return fmt.Errorf("metric %q has no data", req.Metric.Name)
	}
	return nil
}

func renderBar(req domain.ChartRequest, size Size) ([]byte, error) {
	if err := checkMetric(req); err != nil {
		return nil, err
	}

	p := newPlot(req)
	bars, err := plotter.NewBarChart(values(req.Metric.Points), barWidth(size.Width, len(req.Metric.Points)))
	if err != nil {
		return nil, fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars, plotter.NewGrid())
	p.NominalX(req.Metric.Keys()...)
	if len(req.Metric.Points) > 6 {
		rotateXLabels(p)
	}
	return encode(p, size)
}

// renderHorizontalBar lists the first point at the top.
func renderHorizontalBar(req domain.ChartRequest, size Size) ([]byte, error) {
	if err := checkMetric(req); err != nil {
		return nil, err
	}

	n := len(req.Metric.Points)
	reversed := make([]domain.MetricPoint, n)
	names := make([]string, n)
	for i, pt := range req.Metric.Points {
		reversed[n-1-i] = pt
		names[n-1-i] = pt.Key
	}

	p := newPlot(req)
	bars, err := plotter.NewBarChart(values(reversed), barWidth(size.Height, n))
	if err != nil {
		return nil, fmt.Errorf("build bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(1)
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars, plotter.NewGrid())
	p.NominalY(names...)
	return encode(p, size)
}

func renderLine(req domain.ChartRequest, size Size) ([]byte, error) {
	if err := checkMetric(req); err != nil {
		return nil, err
	}

	xys := make(plotter.XYs, len(req.Metric.Points))
	for i, pt := range req.Metric.Points {
		xys[i].X = float64(i)
		xys[i].Y = float64(pt.Value)
	}

	p := newPlot(req)
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("build line chart: %w", err)
	}
	line.LineStyle.Color = plotutil.Color(0)
	line.LineStyle.Width = vg.Points(2)
	points.GlyphStyle.Color = plotutil.Color(0)
	points.GlyphStyle.Shape = draw.CircleGlyph{}

	p.Add(plotter.NewGrid(), line, points)
	p.NominalX(req.Metric.Keys()...)
	p.Y.Min = 0
	rotateXLabels(p)
	return encode(p, size)
}

func checkSeries(m domain.SeriesMetric) error {
	if m.IsEmpty() {
		return fmt.Errorf("series %q has no data", m.Name)
	}
	for _, s := range m.Series {
		if len(s.Values) != len(m.Categories) {
			return fmt.Errorf("series %q has %d values for %d categories", s.Label, len(s.Values), len(m.Categories))
		}
	}
	return nil
}

// stackedPlot stacks one bar per series on each category.
func stackedPlot(title, xLabel, yLabel string, m domain.SeriesMetric, width vg.Length) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true

	w := barWidth(width, len(m.Categories))
	var below *plotter.BarChart
	for i, s := range m.Series {
		bars, err := plotter.NewBarChart(int64Values(s.Values), w)
		if err != nil {
			return nil, fmt.Errorf("build series %q: %w", s.Label, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		if below != nil {
			bars.StackOn(below)
		}
		below = bars
		p.Add(bars)
		p.Legend.Add(s.Label, bars)
	}
	p.NominalX(m.Categories...)
	return p, nil
}

func renderStackedBar(req domain.ChartRequest, size Size) ([]byte, error) {
	if err := checkSeries(req.Series); err != nil {
		return nil, err
	}

	p, err := stackedPlot(req.Title, req.XLabel, req.YLabel, req.Series, size.Width)
	if err != nil {
		return nil, err
	}
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Add(plotter.NewGrid())
	rotateXLabels(p)
	return encode(p, size)
}
