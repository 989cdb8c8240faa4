package domain

type MetricName string

const (
	MetricSalesByCustomerGroup MetricName = "sales_by_customer_group"
	MetricSalesByMonth         MetricName = "sales_by_month"
	MetricSalesByYear          MetricName = "sales_by_year"
	MetricMonthlySales         MetricName = "monthly_sales"
	MetricGroupSalesForYear    MetricName = "group_sales_for_year"
	MetricTopProducts          MetricName = "top_products"
	MetricCustomerGroupShare   MetricName = "customer_group_share"
	MetricProductByGroup       MetricName = "product_by_group"
	MetricCustomerFacets       MetricName = "customer_facets"
)

type MetricPoint struct {
	Key   string
	Value int64
}

// AggregateMetric is an ordered group key -> value mapping.
type AggregateMetric struct {
	Name   MetricName
	Title  string
	Unit   string
	Points []MetricPoint
}

func (m AggregateMetric) Total() int64 {
	var total int64
	for _, p := range m.Points {
		total += p.Value
	}
	return total
}

func (m AggregateMetric) Value(key string) (int64, bool) {
	for _, p := range m.Points {
		if p.Key == key {
			return p.Value, true
		}
	}
	return 0, false
}

func (m AggregateMetric) Keys() []string {
	keys := make([]string, len(m.Points))
	for i, p := range m.Points {
		keys[i] = p.Key
	}
	return keys
}

func (m AggregateMetric) IsEmpty() bool {
	return len(m.Points) == 0
}

type Series struct {
	Label  string
	Values []int64 // aligned with SeriesMetric.Categories
}

// SeriesMetric is a categories x series matrix.
type SeriesMetric struct {
	Name       MetricName
	Title      string
	Categories []string
	Series     []Series
}

func (m SeriesMetric) IsEmpty() bool {
	return len(m.Categories) == 0 || len(m.Series) == 0
}

type Panel struct {
	Title string
	Data  SeriesMetric
}

// FacetMetric repeats the same breakdown across a secondary dimension.
type FacetMetric struct {
	Name    MetricName
	Title   string
	Subject string
	Panels  []Panel
}

func (m FacetMetric) IsEmpty() bool {
	return len(m.Panels) == 0
}

// CustomerRanking holds the best customers of one customer group.
type CustomerRanking struct {
	CustomerGroup string
	Customers     []MetricPoint
}

// MetricSet is everything the aggregator computes for one run.
type MetricSet struct {
	Year         int
	PreviousYear int
	TotalUnits   int64

	SalesByCustomerGroup AggregateMetric
	SalesByMonth         AggregateMetric
	SalesByYear          AggregateMetric
	MonthlySales         AggregateMetric
	GroupSalesForYear    AggregateMetric
	TopProducts          AggregateMetric
	CustomerGroupShare   AggregateMetric
	TopCustomers         []CustomerRanking

	ProductByGroup SeriesMetric
	Facets         []FacetMetric

	YearGrowth    GrowthRate
	QuarterGrowth []GrowthRate
	GroupGrowth   []GrowthRate
}
