package report

import (
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	unit            = "units"
	undefinedGrowth = "undefined"
)

// Builder lays the metric set out as report sections.
type Builder struct {
	title   string
	printer *message.Printer
}

// NewBuilder creates a builder. An empty title becomes "Sales Report for <year>".
func NewBuilder(title string) *Builder {
	return &Builder{
		title:   title,
		printer: message.NewPrinter(language.AmericanEnglish),
	}
}

// Units formats a unit count with thousands separators.
func (b *Builder) Units(n int64) string {
	return b.printer.Sprintf("%d", n)
}

// Growth formats a growth rate; an undefined rate is spelled out.
func (b *Builder) Growth(g domain.GrowthRate) string {
	if !g.Defined {
		return undefinedGrowth
	}
	return b.printer.Sprintf("%.2f%%", g.Percent)
}

func (b *Builder) Build(ms *domain.MetricSet, charts []domain.ChartArtifact) *domain.Report {
	title := b.title
	if title == "" {
		title = fmt.Sprintf("Sales Report for %d", ms.Year)
	}

	return &domain.Report{
		Title:      title,
		Year:       ms.Year,
		TotalUnits: ms.TotalUnits,
		Unit:       unit,
		Charts:     charts,
		Sections: []domain.ReportSection{
			b.yearComparison(ms),
			b.salesByMonth(ms),
			b.quarterOverQuarter(ms),
			b.customerGroups(ms),
			b.topProducts(ms),
			b.topCustomers(ms),
			b.visualizations(charts),
		},
	}
}

func (b *Builder) yearComparison(ms *domain.MetricSet) domain.ReportSection {
	g := ms.YearGrowth
	section := domain.ReportSection{
		Title: "Year Comparison",
		Summary: map[string]interface{}{
			"Report Year":   ms.Year,
			"Previous Year": ms.PreviousYear,
		},
		Details: []domain.ReportDetail{
			{
				Name:        fmt.Sprintf("%d", ms.Year),
				Value:       b.Units(g.LaterTotal),
				Unit:        unit,
				Description: "Units sold across all grocery groups",
			},
		},
	}

	if !g.Defined {
		section.Notes = append(section.Notes,
			fmt.Sprintf("No sales were recorded in %d - no comparison could be made", ms.PreviousYear))
		return section
	}

	section.Details = append(section.Details,
		domain.ReportDetail{
			Name:        fmt.Sprintf("%d", ms.PreviousYear),
			Value:       b.Units(g.EarlierTotal),
			Unit:        unit,
			Description: "Units sold across all grocery groups",
		},
		domain.ReportDetail{
			Name:        fmt.Sprintf("Growth %d to %d", ms.PreviousYear, ms.Year),
			Value:       b.Growth(g),
			Description: "Change in units sold year over year",
		},
	)
	return section
}

func (b *Builder) salesByMonth(ms *domain.MetricSet) domain.ReportSection {
	section := domain.ReportSection{
		Title: "Sales by Month",
		Summary: map[string]interface{}{
			"Year":        ms.Year,
			"Total Units": b.Units(ms.MonthlySales.Total()),
		},
	}
	for _, p := range ms.MonthlySales.Points {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:  p.Key,
			Value: b.Units(p.Value),
			Unit:  unit,
		})
	}
	return section
}

func (b *Builder) quarterOverQuarter(ms *domain.MetricSet) domain.ReportSection {
	section := domain.ReportSection{Title: "Quarter over Quarter"}
	for _, g := range ms.QuarterGrowth {
		earlier := b.Units(g.EarlierTotal)
		desc := fmt.Sprintf("%s vs %s", g.Later.Label(), g.Earlier.Label())
		if !g.Defined {
			earlier = "No Previous Data"
			desc = fmt.Sprintf("no sales in %s", g.Earlier.Label())
		}
		section.Details = append(section.Details,
			domain.ReportDetail{Name: g.Later.Label(), Value: b.Units(g.LaterTotal), Unit: unit},
			domain.ReportDetail{Name: g.Earlier.Label(), Value: earlier, Unit: unit},
			domain.ReportDetail{Name: g.Subject + " Growth", Value: b.Growth(g), Description: desc},
		)
	}
	return section
}

func (b *Builder) customerGroups(ms *domain.MetricSet) domain.ReportSection {
	growth := make(map[string]domain.GrowthRate, len(ms.GroupGrowth))
	undefined := 0
	for _, g := range ms.GroupGrowth {
		growth[g.Subject] = g
		if !g.Defined {
			undefined++
		}
	}

	section := domain.ReportSection{
		Title: "Customer Groups",
		Summary: map[string]interface{}{
			"Customer Groups":  len(ms.SalesByCustomerGroup.Points),
			"Lifetime Units":   b.Units(ms.SalesByCustomerGroup.Total()),
			"Undefined Growth": undefined,
		},
	}
	for _, p := range ms.SalesByCustomerGroup.Points {
		desc := ""
		if g, ok := growth[p.Key]; ok {
			if g.Defined {
				desc = fmt.Sprintf("%d to %d growth: %s", ms.PreviousYear, ms.Year, b.Growth(g))
			} else {
				desc = fmt.Sprintf("growth undefined: no sales in %d", ms.PreviousYear)
			}
		}
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        p.Key,
			Value:       b.Units(p.Value),
			Unit:        unit,
			Description: desc,
		})
	}
	if undefined > 0 {
		section.Notes = append(section.Notes,
			fmt.Sprintf("%d customer group(s) had no sales in %d; their growth is undefined", undefined, ms.PreviousYear))
	}
	return section
}

func (b *Builder) topProducts(ms *domain.MetricSet) domain.ReportSection {
	section := domain.ReportSection{
		Title: "Top Products",
		Summary: map[string]interface{}{
			"Products": len(ms.TopProducts.Points),
		},
	}
	for i, p := range ms.TopProducts.Points {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        p.Key,
			Value:       b.Units(p.Value),
			Unit:        unit,
			Description: fmt.Sprintf("#%d lifetime", i+1),
		})
	}
	return section
}

func (b *Builder) topCustomers(ms *domain.MetricSet) domain.ReportSection {
	section := domain.ReportSection{Title: "Top Customers"}
	for _, r := range ms.TopCustomers {
		for i, c := range r.Customers {
			section.Details = append(section.Details, domain.ReportDetail{
				Name:        c.Key,
				Value:       b.Units(c.Value),
				Unit:        unit,
				Description: fmt.Sprintf("#%d in %s", i+1, r.CustomerGroup),
			})
		}
	}
	return section
}

func (b *Builder) visualizations(charts []domain.ChartArtifact) domain.ReportSection {
	rendered := 0
	section := domain.ReportSection{Title: "Visualizations"}
	for _, c := range charts {
		status, desc := "included", ""
		if c.Skipped() {
			status = "unavailable"
			if c.Err != nil {
				desc = c.Err.Error()
			}
		} else {
			rendered++
		}
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        c.Title,
			Value:       status,
			Description: desc,
		})
	}
	section.Summary = map[string]interface{}{
		"Charts":   len(charts),
		"Rendered": rendered,
	}
	section.Notes = append(section.Notes, "See following pages for detailed visualizations.")
	return section
}
