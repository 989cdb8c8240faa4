package metrics

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb/sales"
	"github.com/rs/zerolog"
)

const (
	Unit       = "units"
	OtherGroup = "Other"
	AllGroups  = "All customer groups"

	DefaultTopCustomers = 3
	DefaultPieThreshold = 1000
)

type Options struct {
	// Year is the report year; 0 picks the latest year in the data.
	Year         int
	TopCustomers int
	PieThreshold int64
	FacetGroups  []string
}

type Aggregator struct {
	store sales.Store
	opts  Options
}

func NewAggregator(s sales.Store, opts Options) (*Aggregator, error) {
	if s == nil {
		return nil, fmt.Errorf("sales store is nil")
	}
	if opts.TopCustomers <= 0 {
		opts.TopCustomers = DefaultTopCustomers
	}
	if opts.PieThreshold < 0 {
		return nil, fmt.Errorf("pie threshold must not be negative, got %d", opts.PieThreshold)
	}
	return &Aggregator{store: s, opts: opts}, nil
}

// Aggregate loads the table into a throwaway in-memory store, computes the metric set
// and closes the store before returning.
func Aggregate(ctx context.Context, table domain.SalesTable, opts Options) (*domain.MetricSet, error) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: duckdb.InMemory})
	if err != nil {
		return nil, fmt.Errorf("open analytical store: %w", err)
	}
	defer db.Close()

	s, err := sales.NewStore(db)
	if err != nil {
		return nil, err
	}

	err = duckdb.InTransaction(ctx, db, func(ctx context.Context) error {
		return s.Add(ctx, adapters.MapSalesTableToStore(table))
	})
	if err != nil {
		return nil, fmt.Errorf("load sales table: %w", err)
	}

	agg, err := NewAggregator(s, opts)
	if err != nil {
		return nil, err
	}
	return agg.Compute(ctx)
}

func (a *Aggregator) Compute(ctx context.Context) (*domain.MetricSet, error) {
	logger := zerolog.Ctx(ctx)

	stats, err := a.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if stats.RecordsCount == 0 {
		return nil, domain.NewError(domain.ErrSchema, "aggregate", "sales table is empty")
	}

	year := a.opts.Year
	if year == 0 {
		year = stats.LastYear
	}
	ms := &domain.MetricSet{Year: year, PreviousYear: year - 1}

	steps := []struct {
		name string
		fn   func(ctx context.Context, ms *domain.MetricSet) error
	}{
		{"totals", a.computeTotals},
		{"monthly sales", a.computeMonthlySales},
		{"top products", a.computeTopProducts},
		{"customer group share", a.computeShare},
		{"top customers", a.computeTopCustomers},
		{"product by group", a.computeProductByGroup},
		{"customer facets", a.computeFacets},
		{"growth", a.computeGrowth},
	}
	for _, step := range steps {
		if err := step.fn(ctx, ms); err != nil {
			return nil, fmt.Errorf("compute %s: %w", step.name, err)
		}
	}

	logger.Info().
		Int("year", ms.Year).
		Int64("total_units", ms.TotalUnits).
		Int("customer_groups", len(ms.SalesByCustomerGroup.Points)).
		Int("products", len(ms.TopProducts.Points)).
		Str("year_growth", ms.YearGrowth.String()).
		Msg("metrics computed")

	return ms, nil
}

// Growth compares the sales of a customer group (all groups when empty) between two periods.
func (a *Aggregator) Growth(ctx context.Context, subject, group string, earlier, later domain.Period) (domain.GrowthRate, error) {
	e, err := a.store.PeriodTotal(ctx, periodFilter(earlier, group))
	if err != nil {
		return domain.GrowthRate{}, err
	}
	l, err := a.store.PeriodTotal(ctx, periodFilter(later, group))
	if err != nil {
		return domain.GrowthRate{}, err
	}
	return domain.NewGrowthRate(subject, earlier, later, e, l), nil
}

func periodFilter(p domain.Period, group string) sales.Filter {
	return sales.Filter{Year: p.Year, Months: p.Months, CustomerGroup: group}
}

func (a *Aggregator) metric(ctx context.Context, name domain.MetricName, title string, dim sales.Dimension, filter sales.Filter) (domain.AggregateMetric, error) {
	totals, err := a.store.Totals(ctx, dim, filter)
	if err != nil {
		return domain.AggregateMetric{}, err
	}
	return domain.AggregateMetric{
		Name:   name,
		Title:  title,
		Unit:   Unit,
		Points: adapters.MapStoreTotalsToMetricPoints(totals),
	}, nil
}

func (a *Aggregator) computeTotals(ctx context.Context, ms *domain.MetricSet) error {
	var err error
	ms.SalesByCustomerGroup, err = a.metric(ctx, domain.MetricSalesByCustomerGroup,
		"Lifetime Sales by Customer Group", sales.DimCustomerGroup, sales.Filter{})
	if err != nil {
		return err
	}
	ms.SalesByMonth, err = a.metric(ctx, domain.MetricSalesByMonth,
		"Sales by Month", sales.DimPeriod, sales.Filter{})
	if err != nil {
		return err
	}
	ms.SalesByYear, err = a.metric(ctx, domain.MetricSalesByYear,
		"Units Sold by Year", sales.DimYear, sales.Filter{})
	if err != nil {
		return err
	}
	ms.GroupSalesForYear, err = a.metric(ctx, domain.MetricGroupSalesForYear,
		fmt.Sprintf("Customer Group Sales in %d", ms.Year), sales.DimCustomerGroup, sales.Filter{Year: ms.Year})
	if err != nil {
		return err
	}
	ms.TotalUnits, err = a.store.PeriodTotal(ctx, sales.Filter{Year: ms.Year})
	return err
}

func (a *Aggregator) computeMonthlySales(ctx context.Context, ms *domain.MetricSet) error {
	totals, err := a.store.Totals(ctx, sales.DimMonth, sales.Filter{Year: ms.Year})
	if err != nil {
		return err
	}

	byMonth := make(map[int]int64, len(totals))
	for _, t := range totals {
		m, err := strconv.Atoi(t.Key)
		if err != nil {
			return fmt.Errorf("unexpected month key %q: %w", t.Key, err)
		}
		byMonth[m] = t.Value
	}

	points := make([]domain.MetricPoint, 0, 12)
	for m := time.January; m <= time.December; m++ {
		points = append(points, domain.MetricPoint{Key: m.String(), Value: byMonth[int(m)]})
	}
	ms.MonthlySales = domain.AggregateMetric{
		Name:   domain.MetricMonthlySales,
		Title:  fmt.Sprintf("Sales by Month for %d", ms.Year),
		Unit:   Unit,
		Points: points,
	}
	return nil
}

func (a *Aggregator) computeTopProducts(ctx context.Context, ms *domain.MetricSet) error {
	totals, err := a.store.Totals(ctx, sales.DimProduct, sales.Filter{})
	if err != nil {
		return err
	}
	ms.TopProducts = domain.AggregateMetric{
		Name:   domain.MetricTopProducts,
		Title:  "Best Selling Products",
		Unit:   Unit,
		Points: adapters.MapStoreTotalsToMetricPoints(mergeByDisplayName(totals)),
	}
	return nil
}

// computeShare folds customer groups below the threshold into a single Other slice.
func (a *Aggregator) computeShare(_ context.Context, ms *domain.MetricSet) error {
	var points []domain.MetricPoint
	var other int64
	for _, p := range ms.SalesByCustomerGroup.Points {
		if p.Value >= a.opts.PieThreshold {
			points = append(points, p)
			continue
		}
		other += p.Value
	}
	if other > 0 {
		// a real group named Other absorbs the folded slices
		i := slices.IndexFunc(points, func(p domain.MetricPoint) bool { return p.Key == OtherGroup })
		if i >= 0 {
			points[i].Value += other
		} else {
			points = append(points, domain.MetricPoint{Key: OtherGroup, Value: other})
		}
	}
	ms.CustomerGroupShare = domain.AggregateMetric{
		Name:   domain.MetricCustomerGroupShare,
		Title:  "Customer Group Percentage of Total Sales",
		Unit:   Unit,
		Points: points,
	}
	return nil
}

func (a *Aggregator) computeTopCustomers(ctx context.Context, ms *domain.MetricSet) error {
	cells, err := a.store.Breakdown(ctx, []sales.Dimension{sales.DimCustomerGroup, sales.DimCustomer}, sales.Filter{})
	if err != nil {
		return err
	}

	byGroup := make(map[string][]domain.MetricPoint)
	for _, c := range cells {
		group, customer := c.Keys[0], c.Keys[1]
		if len(byGroup[group]) >= a.opts.TopCustomers {
			continue
		}
		byGroup[group] = append(byGroup[group], domain.MetricPoint{Key: customer, Value: c.Value})
	}

	ms.TopCustomers = make([]domain.CustomerRanking, 0, len(byGroup))
	for _, group := range ms.SalesByCustomerGroup.Keys() {
		ms.TopCustomers = append(ms.TopCustomers, domain.CustomerRanking{
			CustomerGroup: group,
			Customers:     byGroup[group],
		})
	}
	return nil
}

func (a *Aggregator) computeProductByGroup(ctx context.Context, ms *domain.MetricSet) error {
	filter := sales.Filter{Year: ms.Year}
	products, err := a.store.Totals(ctx, sales.DimProduct, filter)
	if err != nil {
		return err
	}
	cells, err := a.store.Breakdown(ctx, []sales.Dimension{sales.DimProduct, sales.DimCustomerGroup}, filter)
	if err != nil {
		return err
	}

	ms.ProductByGroup = domain.SeriesMetric{
		Name:  domain.MetricProductByGroup,
		Title: fmt.Sprintf("Sales by SKU and Customer Group %d", ms.Year),
	}
	merged := mergeByDisplayName(products)
	categories := make(map[string]int, len(merged))
	for i, p := range merged {
		categories[p.Key] = i
		ms.ProductByGroup.Categories = append(ms.ProductByGroup.Categories, p.Key)
	}

	series := make(map[string]int)
	for _, group := range ms.GroupSalesForYear.Keys() {
		series[group] = len(ms.ProductByGroup.Series)
		ms.ProductByGroup.Series = append(ms.ProductByGroup.Series, domain.Series{
			Label:  group,
			Values: make([]int64, len(merged)),
		})
	}

	for _, c := range cells {
		ci := categories[DisplayProductName(c.Keys[0])]
		si, ok := series[c.Keys[1]]
		if !ok {
			return fmt.Errorf("customer group %q missing from year totals", c.Keys[1])
		}
		ms.ProductByGroup.Series[si].Values[ci] += c.Value
	}
	return nil
}

func (a *Aggregator) computeFacets(ctx context.Context, ms *domain.MetricSet) error {
	ms.Facets = make([]domain.FacetMetric, 0, len(a.opts.FacetGroups))
	for _, group := range a.opts.FacetGroups {
		facet, err := a.facet(ctx, group, ms.Year)
		if err != nil {
			return fmt.Errorf("facet %q: %w", group, err)
		}
		ms.Facets = append(ms.Facets, facet)
	}
	return nil
}

// facet builds one panel per customer of the group, one series per product and one
// category per month of the year. Customers and products without sales are left out.
func (a *Aggregator) facet(ctx context.Context, group string, year int) (domain.FacetMetric, error) {
	facet := domain.FacetMetric{
		Name:    domain.MetricCustomerFacets,
		Title:   fmt.Sprintf("Product Sales by store for %s in %d", group, year),
		Subject: group,
	}

	filter := sales.Filter{Year: year, CustomerGroup: group}
	customers, err := a.store.Totals(ctx, sales.DimCustomer, filter)
	if err != nil {
		return facet, err
	}
	products, err := a.store.Totals(ctx, sales.DimProduct, filter)
	if err != nil {
		return facet, err
	}
	cells, err := a.store.Breakdown(ctx, []sales.Dimension{sales.DimCustomer, sales.DimProduct, sales.DimMonth}, filter)
	if err != nil {
		return facet, err
	}

	merged := mergeByDisplayName(products)
	byCustomer := make(map[string]map[string][]int64)
	for _, c := range cells {
		if c.Value == 0 {
			continue
		}
		month, err := strconv.Atoi(c.Keys[2])
		if err != nil {
			return facet, fmt.Errorf("unexpected month key %q: %w", c.Keys[2], err)
		}
		product := DisplayProductName(c.Keys[1])
		if byCustomer[c.Keys[0]] == nil {
			byCustomer[c.Keys[0]] = make(map[string][]int64)
		}
		if byCustomer[c.Keys[0]][product] == nil {
			byCustomer[c.Keys[0]][product] = make([]int64, 12)
		}
		byCustomer[c.Keys[0]][product][month-1] += c.Value
	}

	months := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, m.String()[:3])
	}

	for _, customer := range customers {
		values, ok := byCustomer[customer.Key]
		if !ok {
			continue
		}
		panel := domain.Panel{
			Title: customer.Key,
			Data: domain.SeriesMetric{
				Name:       domain.MetricCustomerFacets,
				Title:      customer.Key,
				Categories: months,
			},
		}
		for _, p := range merged {
			if v, ok := values[p.Key]; ok {
				panel.Data.Series = append(panel.Data.Series, domain.Series{Label: p.Key, Values: v})
			}
		}
		facet.Panels = append(facet.Panels, panel)
	}
	return facet, nil
}

func (a *Aggregator) computeGrowth(ctx context.Context, ms *domain.MetricSet) error {
	var err error
	ms.YearGrowth, err = a.Growth(ctx, AllGroups,
		"", domain.YearPeriod(ms.PreviousYear), domain.YearPeriod(ms.Year))
	if err != nil {
		return err
	}

	ms.QuarterGrowth = make([]domain.GrowthRate, 0, 4)
	for q := 1; q <= 4; q++ {
		g, err := a.Growth(ctx, fmt.Sprintf("Q%d", q),
			"", domain.QuarterPeriod(ms.PreviousYear, q), domain.QuarterPeriod(ms.Year, q))
		if err != nil {
			return err
		}
		ms.QuarterGrowth = append(ms.QuarterGrowth, g)
	}

	groups := ms.SalesByCustomerGroup.Keys()
	ms.GroupGrowth = make([]domain.GrowthRate, 0, len(groups))
	for _, group := range groups {
		g, err := a.Growth(ctx, group,
			group, domain.YearPeriod(ms.PreviousYear), domain.YearPeriod(ms.Year))
		if err != nil {
			return err
		}
		ms.GroupGrowth = append(ms.GroupGrowth, g)
	}
	return nil
}
