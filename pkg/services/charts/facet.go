package charts

import (
	"bytes"
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const facetColumns = 2

// renderFacetGrid tiles one stacked bar panel per facet, two panels per row, under a
// shared title.
func renderFacetGrid(req domain.ChartRequest, size Size) ([]byte, error) {
	facet := req.Facet
	if facet.IsEmpty() {
		return nil, fmt.Errorf("facet %q has no panels", facet.Subject)
	}

	cols := facetColumns
	if len(facet.Panels) < cols {
		cols = len(facet.Panels)
	}
	rows := (len(facet.Panels) + cols - 1) / cols

	plots := make([][]*plot.Plot, rows)
	for j := range plots {
		plots[j] = make([]*plot.Plot, cols)
	}
	for i, panel := range facet.Panels {
		if err := checkSeries(panel.Data); err != nil {
			return nil, fmt.Errorf("panel %q: %w", panel.Title, err)
		}
		p, err := stackedPlot(panel.Title, req.XLabel, req.YLabel, panel.Data, size.Width/vg.Length(cols))
		if err != nil {
			return nil, fmt.Errorf("panel %q: %w", panel.Title, err)
		}
		plots[i/cols][i%cols] = p
	}
	// Align needs a full grid; the filler is laid out but never drawn.
	for j := range plots {
		for i := range plots[j] {
			if plots[j][i] == nil {
				filler := plot.New()
				filler.HideAxes()
				plots[j][i] = filler
			}
		}
	}

	img := vgimg.New(size.Width, size.Height)
	dc := draw.New(img)

	title := plot.New().Title.TextStyle
	title.Font.Size = vg.Points(16)
	title.XAlign = draw.XCenter
	title.YAlign = draw.YTop
	titleHeight := title.Height(req.Title) + vg.Points(12)
	dc.FillText(title, vg.Point{X: size.Width / 2, Y: size.Height - vg.Points(6)}, req.Title)

	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 2,
		PadY:      vg.Millimeter * 2,
		PadTop:    titleHeight,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	canvases := plot.Align(plots, tiles, dc)
	for i := range facet.Panels {
		plots[i/cols][i%cols].Draw(canvases[i/cols][i%cols])
	}

	var buf bytes.Buffer
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
