package charts

import (
	"strings"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

// Plan lists the report charts in page order.
func Plan(ms *domain.MetricSet) []domain.ChartRequest {
	reqs := []domain.ChartRequest{
		{
			Kind:   domain.ChartLine,
			Name:   string(domain.MetricMonthlySales),
			Title:  ms.MonthlySales.Title,
			XLabel: "Month",
			YLabel: "Sales",
			Metric: ms.MonthlySales,
		},
		{
			Kind:   domain.ChartPie,
			Name:   string(domain.MetricCustomerGroupShare),
			Title:  ms.CustomerGroupShare.Title,
			Metric: ms.CustomerGroupShare,
		},
		{
			Kind:   domain.ChartBar,
			Name:   string(domain.MetricSalesByYear),
			Title:  ms.SalesByYear.Title,
			XLabel: "Year",
			YLabel: "Units Sold",
			Metric: ms.SalesByYear,
		},
		{
			Kind:   domain.ChartBar,
			Name:   string(domain.MetricGroupSalesForYear),
			Title:  ms.GroupSalesForYear.Title,
			XLabel: "Customer Group",
			YLabel: "Total Sales",
			Metric: ms.GroupSalesForYear,
		},
		{
			Kind:   domain.ChartHorizontalBar,
			Name:   string(domain.MetricTopProducts),
			Title:  ms.TopProducts.Title,
			XLabel: "Units Sold",
			YLabel: "SKU",
			Metric: ms.TopProducts,
		},
		{
			Kind:   domain.ChartStackedBar,
			Name:   string(domain.MetricProductByGroup),
			Title:  ms.ProductByGroup.Title,
			XLabel: "Product",
			YLabel: "Total Units Sold",
			Series: ms.ProductByGroup,
		},
	}

	for _, facet := range ms.Facets {
		reqs = append(reqs, domain.ChartRequest{
			Kind:   domain.ChartFacetGrid,
			Name:   string(domain.MetricCustomerFacets) + "_" + slug(facet.Subject),
			Title:  facet.Title,
			XLabel: "Month",
			YLabel: "Units Sold",
			Facet:  facet,
		})
	}
	return reqs
}

func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}
