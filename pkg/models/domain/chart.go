package domain

type ChartKind string

const (
	ChartBar           ChartKind = "bar"
	ChartHorizontalBar ChartKind = "hbar"
	ChartLine          ChartKind = "line"
	ChartPie           ChartKind = "pie"
	ChartStackedBar    ChartKind = "stacked_bar"
	ChartFacetGrid     ChartKind = "facet_grid"
)

// ChartRequest asks the visualizer for one chart. Only the data field matching Kind is read:
// Metric for bar, hbar, line and pie; Series for stacked_bar; Facet for facet_grid.
type ChartRequest struct {
	Kind   ChartKind
	Name   string
	Title  string
	XLabel string
	YLabel string

	Metric AggregateMetric
	Series SeriesMetric
	Facet  FacetMetric
}

// ChartArtifact is a rendered PNG. A skipped chart carries Err and no image.
type ChartArtifact struct {
	Kind   ChartKind
	Name   string
	Title  string
	Image  []byte
	Width  int
	Height int
	Err    error
}

func (a ChartArtifact) Skipped() bool {
	return a.Err != nil || len(a.Image) == 0
}
