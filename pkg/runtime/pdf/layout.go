package pdf

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/go-pdf/fpdf"
)

const (
	fontFamily = "Helvetica"
	margin     = 12.0
)

type column struct {
	title string
	width float64
	align string
}

var detailColumns = []column{
	{title: "Name", width: 62, align: "L"},
	{title: "Value", width: 32, align: "R"},
	{title: "Unit", width: 18, align: "L"},
	{title: "Description", width: 79.9, align: "L"},
}

func newDocument(orientation string, title string) (*fpdf.Fpdf, func(string) string) {
	doc := fpdf.New(orientation, "mm", "Letter", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)
	doc.SetTitle(title, true)
	doc.SetCreator("sales-atlas", true)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-10)
		doc.SetFont(fontFamily, "I", 8)
		doc.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	return doc, doc.UnicodeTranslatorFromDescriptor("")
}

// fit shortens s with an ellipsis until it fits into width.
func fit(doc *fpdf.Fpdf, s string, width float64) string {
	if doc.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if doc.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ""
}

// writeSummary renders the title page and one table per report section.
func writeSummary(report *domain.Report, path string) error {
	doc, tr := newDocument("P", report.Title)
	doc.AddPage()

	doc.SetFont(fontFamily, "B", 20)
	doc.CellFormat(0, 12, tr(report.Title), "", 1, "C", false, 0, "")
	doc.SetFont(fontFamily, "", 10)
	doc.CellFormat(0, 6, tr(fmt.Sprintf("Report year %d", report.Year)), "", 1, "C", false, 0, "")
	doc.Ln(6)

	for _, section := range report.Sections {
		writeSection(doc, tr, section)
	}

	if err := doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write summary pdf: %w", err)
	}
	return nil
}

func writeSection(doc *fpdf.Fpdf, tr func(string) string, section domain.ReportSection) {
	doc.SetFont(fontFamily, "B", 13)
	doc.CellFormat(0, 8, tr(section.Title), "", 1, "L", false, 0, "")

	if len(section.Summary) > 0 {
		keys := make([]string, 0, len(section.Summary))
		for k := range section.Summary {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		doc.SetFont(fontFamily, "", 10)
		for _, k := range keys {
			doc.CellFormat(0, 5, tr(fmt.Sprintf("%s: %v", k, section.Summary[k])), "", 1, "L", false, 0, "")
		}
		doc.Ln(1)
	}

	if len(section.Details) > 0 {
		doc.SetFont(fontFamily, "B", 9)
		doc.SetFillColor(230, 230, 230)
		for _, c := range detailColumns {
			doc.CellFormat(c.width, 6, c.title, "1", 0, "C", true, 0, "")
		}
		doc.Ln(-1)

		doc.SetFont(fontFamily, "", 9)
		for _, d := range section.Details {
			cells := []string{d.Name, fmt.Sprintf("%v", d.Value), d.Unit, d.Description}
			for i, c := range detailColumns {
				doc.CellFormat(c.width, 5.5, fit(doc, tr(cells[i]), c.width-2), "1", 0, c.align, false, 0, "")
			}
			doc.Ln(-1)
		}
	}

	if len(section.Notes) > 0 {
		doc.Ln(1)
		doc.SetFont(fontFamily, "I", 9)
		for _, note := range section.Notes {
			doc.MultiCell(0, 5, tr(note), "", "L", false)
		}
	}
	doc.Ln(5)
}

// writeVisualizations renders one landscape page per chart in report order.
func writeVisualizations(report *domain.Report, path string) error {
	doc, tr := newDocument("L", report.Title+" - Visualizations")

	if len(report.Charts) == 0 {
		doc.AddPage()
		doc.SetFont(fontFamily, "I", 12)
		doc.CellFormat(0, 10, "No charts were planned for this report.", "", 1, "C", false, 0, "")
	}

	for i, chart := range report.Charts {
		doc.AddPage()
		if chart.Skipped() {
			writeUnavailable(doc, tr, chart)
			continue
		}

		name := fmt.Sprintf("chart-%d", i)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(chart.Image))
		if err := doc.Error(); err != nil {
			return fmt.Errorf("register chart %q: %w", chart.Name, err)
		}

		pageW, pageH := doc.GetPageSize()
		x, y, w, h := fitImage(pageW-2*margin, pageH-2*margin-6, chart.Width, chart.Height)
		doc.ImageOptions(name, margin+x, margin+y, w, h, false, opts, 0, "")
	}

	if err := doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write visualizations pdf: %w", err)
	}
	return nil
}

func writeUnavailable(doc *fpdf.Fpdf, tr func(string) string, chart domain.ChartArtifact) {
	doc.SetFont(fontFamily, "B", 16)
	doc.CellFormat(0, 12, tr(chart.Title), "", 1, "C", false, 0, "")
	doc.SetFont(fontFamily, "I", 11)
	doc.CellFormat(0, 8, "Chart unavailable", "", 1, "C", false, 0, "")
	if chart.Err != nil {
		doc.SetFont(fontFamily, "", 9)
		doc.MultiCell(0, 5, tr(chart.Err.Error()), "", "C", false)
	}
}

// fitImage scales a w x h pixel image into the box, keeping its aspect ratio and
// centering it.
func fitImage(boxW, boxH float64, w, h int) (x, y, outW, outH float64) {
	if w <= 0 || h <= 0 {
		return 0, 0, boxW, boxH
	}
	ratio := float64(w) / float64(h)
	outW, outH = boxW, boxW/ratio
	if outH > boxH {
		outW, outH = boxH*ratio, boxH
	}
	return (boxW - outW) / 2, (boxH - outH) / 2, outW, outH
}
