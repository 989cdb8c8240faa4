package charts

import (
	"fmt"
	"image/color"
	"math"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// wedges per full turn used to approximate the arc
const arcSteps = 180

// pieChart draws one wedge per point in the unit square centered on the origin.
type pieChart struct {
	points []domain.MetricPoint
	total  float64
	// startAngle is where the first wedge begins, in radians counterclockwise from 3 o'clock.
	startAngle float64
}

func newPieChart(points []domain.MetricPoint) (*pieChart, error) {
	var total float64
	for _, p := range points {
		if p.Value < 0 {
			return nil, fmt.Errorf("negative slice %q", p.Key)
		}
		total += float64(p.Value)
	}
	if total == 0 {
		return nil, fmt.Errorf("pie has no positive slices")
	}
	return &pieChart{points: points, total: total, startAngle: 140 * math.Pi / 180}, nil
}

func (pc *pieChart) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1, 1, -1, 1
}

func (pc *pieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	center := vg.Point{X: trX(0), Y: trY(0)}
	radius := trX(1) - trX(0)
	if r := trY(1) - trY(0); r < radius {
		radius = r
	}
	radius *= 0.8

	sty := plt.Title.TextStyle
	sty.Font.Size = vg.Points(10)
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YCenter

	angle := pc.startAngle
	for i, p := range pc.points {
		share := float64(p.Value) / pc.total
		if share == 0 {
			continue
		}
		sweep := share * 2 * math.Pi
		c.FillPolygon(pc.color(i), wedge(center, radius, angle, sweep))

		mid := angle + sweep/2
		label := vg.Point{
			X: center.X + radius*0.65*vg.Length(math.Cos(mid)),
			Y: center.Y + radius*0.65*vg.Length(math.Sin(mid)),
		}
		c.FillText(sty, label, fmt.Sprintf("%.1f%%", share*100))
		angle += sweep
	}
}

func (pc *pieChart) color(i int) color.Color {
	return plotutil.Color(i)
}

func wedge(center vg.Point, radius vg.Length, start, sweep float64) []vg.Point {
	steps := int(math.Ceil(sweep / (2 * math.Pi) * arcSteps))
	if steps < 1 {
		steps = 1
	}
	pts := make([]vg.Point, 0, steps+2)
	pts = append(pts, center)
	for s := 0; s <= steps; s++ {
		a := start + sweep*float64(s)/float64(steps)
		pts = append(pts, vg.Point{
			X: center.X + radius*vg.Length(math.Cos(a)),
			Y: center.Y + radius*vg.Length(math.Sin(a)),
		})
	}
	return pts
}

// swatch is the legend thumbnail of one wedge.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	})
}

func renderPie(req domain.ChartRequest, size Size) ([]byte, error) {
	if err := checkMetric(req); err != nil {
		return nil, err
	}

	pie, err := newPieChart(req.Metric.Points)
	if err != nil {
		return nil, err
	}

	p := newPlot(req)
	p.HideAxes()
	p.Add(pie)
	p.Legend.Top = true
	p.Legend.Left = false
	for i, pt := range req.Metric.Points {
		p.Legend.Add(pt.Key, swatch{color: pie.color(i)})
	}
	return encode(p, size)
}
