package charts

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

type fixture struct {
	visualizer *Visualizer
	ctx        context.Context
}

func setupFixture(t *testing.T) *fixture {
	v, err := NewVisualizer(DefaultRegistry(), Options{WidthInches: 4, HeightInches: 3})
	require.NoError(t, err)
	return &fixture{
		visualizer: v,
		ctx:        context.Background(),
	}
}

func metric(name domain.MetricName, points ...domain.MetricPoint) domain.AggregateMetric {
	return domain.AggregateMetric{Name: name, Title: string(name), Unit: "units", Points: points}
}

func sampleSeries() domain.SeriesMetric {
	return domain.SeriesMetric{
		Name:       domain.MetricProductByGroup,
		Title:      "Sales by SKU and Customer Group 2024",
		Categories: []string{"Peru", "Ethiopia"},
		Series: []domain.Series{
			{Label: "A", Values: []int64{150, 100}},
			{Label: "B", Values: []int64{250, 0}},
		},
	}
}

func sampleMetricSet() *domain.MetricSet {
	months := make([]domain.MetricPoint, 0, 12)
	for i, m := range []string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"} {
		months = append(months, domain.MetricPoint{Key: m, Value: int64(i * 10)})
	}

	return &domain.MetricSet{
		Year:               2024,
		MonthlySales:       metric(domain.MetricMonthlySales, months...),
		CustomerGroupShare: metric(domain.MetricCustomerGroupShare, domain.MetricPoint{Key: "A", Value: 355}, domain.MetricPoint{Key: "Other", Value: 20}),
		SalesByYear:        metric(domain.MetricSalesByYear, domain.MetricPoint{Key: "2023", Value: 100}, domain.MetricPoint{Key: "2024", Value: 525}),
		GroupSalesForYear:  metric(domain.MetricGroupSalesForYear, domain.MetricPoint{Key: "A", Value: 255}),
		TopProducts:        metric(domain.MetricTopProducts, domain.MetricPoint{Key: "Peru", Value: 400}, domain.MetricPoint{Key: "Kenya", Value: 25}),
		ProductByGroup:     sampleSeries(),
		Facets: []domain.FacetMetric{
			{
				Name:    domain.MetricCustomerFacets,
				Title:   "Product Sales by store for Whole Foods CO in 2024",
				Subject: "Whole Foods CO",
				Panels: []domain.Panel{
					{Title: "WF Boulder", Data: sampleSeries()},
					{Title: "WF Denver", Data: sampleSeries()},
					{Title: "WF Pearl", Data: sampleSeries()},
				},
			},
			{Name: domain.MetricCustomerFacets, Title: "King Soopers", Subject: "King Soopers"},
		},
	}
}

func TestRegistry(t *testing.T) {
	noop := func(domain.ChartRequest, Size) ([]byte, error) { return []byte("ok"), nil }

	t.Run("register and render", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(domain.ChartBar, noop))

		img, err := r.Render(domain.ChartRequest{Kind: domain.ChartBar}, Size{})
		require.NoError(t, err)
		assert.Equal(t, []byte("ok"), img)
	})

	t.Run("duplicate kind", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(domain.ChartBar, noop))
		assert.Error(t, r.Register(domain.ChartBar, noop))
	})

	t.Run("invalid registration", func(t *testing.T) {
		r := NewRegistry()
		assert.Error(t, r.Register("", noop))
		assert.Error(t, r.Register(domain.ChartPie, nil))
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := NewRegistry().Render(domain.ChartRequest{Kind: domain.ChartPie}, Size{})
		assert.Error(t, err)
	})

	t.Run("default kinds", func(t *testing.T) {
		assert.Equal(t, []domain.ChartKind{
			domain.ChartBar,
			domain.ChartFacetGrid,
			domain.ChartHorizontalBar,
			domain.ChartLine,
			domain.ChartPie,
			domain.ChartStackedBar,
		}, DefaultRegistry().Kinds())
	})
}

func TestPlan(t *testing.T) {
	reqs := Plan(sampleMetricSet())
	require.Len(t, reqs, 8)

	kinds := make([]domain.ChartKind, 0, len(reqs))
	for _, r := range reqs {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []domain.ChartKind{
		domain.ChartLine,
		domain.ChartPie,
		domain.ChartBar,
		domain.ChartBar,
		domain.ChartHorizontalBar,
		domain.ChartStackedBar,
		domain.ChartFacetGrid,
		domain.ChartFacetGrid,
	}, kinds)
	assert.Equal(t, "customer_facets_whole_foods_co", reqs[6].Name)
	assert.Equal(t, "SKU", reqs[4].YLabel)
}

func TestVisualizer_Render(t *testing.T) {
	f := setupFixture(t)

	for _, req := range Plan(sampleMetricSet())[:7] {
		t.Run(req.Name, func(t *testing.T) {
			artifact := f.visualizer.Render(req)
			require.NoError(t, artifact.Err)
			assert.False(t, artifact.Skipped())
			assert.True(t, bytes.HasPrefix(artifact.Image, pngMagic))
			assert.Equal(t, 384, artifact.Width)
			assert.Equal(t, 288, artifact.Height)
		})
	}
}

func TestVisualizer_RenderFailures(t *testing.T) {
	f := setupFixture(t)

	tests := []struct {
		name string
		req  domain.ChartRequest
	}{
		{name: "empty bar", req: domain.ChartRequest{Kind: domain.ChartBar, Metric: metric(domain.MetricSalesByYear)}},
		{name: "empty line", req: domain.ChartRequest{Kind: domain.ChartLine, Metric: metric(domain.MetricMonthlySales)}},
		{name: "zero pie", req: domain.ChartRequest{Kind: domain.ChartPie, Metric: metric(domain.MetricCustomerGroupShare, domain.MetricPoint{Key: "A"})}},
		{name: "empty facet", req: domain.ChartRequest{Kind: domain.ChartFacetGrid}},
		{name: "ragged series", req: domain.ChartRequest{Kind: domain.ChartStackedBar, Series: domain.SeriesMetric{
			Categories: []string{"a", "b"},
			Series:     []domain.Series{{Label: "A", Values: []int64{1}}},
		}}},
		{name: "unknown kind", req: domain.ChartRequest{Kind: domain.ChartKind("radar")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact := f.visualizer.Render(tt.req)
			assert.True(t, errors.Is(artifact.Err, domain.ErrRender))
			assert.True(t, artifact.Skipped())
			assert.Nil(t, artifact.Image)
		})
	}
}

func TestVisualizer_RenderAll(t *testing.T) {
	f := setupFixture(t)

	reqs := Plan(sampleMetricSet())
	artifacts := f.visualizer.RenderAll(f.ctx, reqs)

	require.Len(t, artifacts, len(reqs))
	for i, a := range artifacts {
		assert.Equal(t, reqs[i].Name, a.Name)
	}
	// the King Soopers facet has no panels
	assert.True(t, artifacts[7].Skipped())
	assert.ErrorIs(t, artifacts[7].Err, domain.ErrRender)
	for _, a := range artifacts[:7] {
		assert.False(t, a.Skipped(), a.Name)
	}
}

func TestNewVisualizer(t *testing.T) {
	_, err := NewVisualizer(nil, Options{})
	assert.Error(t, err)

	_, err = NewVisualizer(DefaultRegistry(), Options{WidthInches: -1})
	assert.Error(t, err)

	v, err := NewVisualizer(DefaultRegistry(), Options{})
	require.NoError(t, err)
	w, h := v.size.Pixels()
	assert.Equal(t, 1056, w)
	assert.Equal(t, 816, h)
}
