package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/runtime/pdf"
	"github.com/de-tools/sales-atlas/pkg/services/charts"
	"github.com/de-tools/sales-atlas/pkg/services/cleaner"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/de-tools/sales-atlas/pkg/services/loader"
	"github.com/de-tools/sales-atlas/pkg/services/metrics"
	"github.com/de-tools/sales-atlas/pkg/services/report"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Context carries the state of one run from stage to stage.
type Context struct {
	RunID   uuid.UUID
	Config  *config.Config
	Raw     []domain.RawRecord
	Table   domain.SalesTable
	Metrics *domain.MetricSet
	Charts  []domain.ChartArtifact
	Report  *domain.Report
}

type Stage struct {
	Name string
	Run  func(ctx context.Context, pc *Context) error
}

type Mode int

const (
	// ModeReport runs every stage and writes the PDF.
	ModeReport Mode = iota
	// ModeSummary stops once the report is built; no charts and no files.
	ModeSummary
)

type Runner struct {
	config   *config.Config
	registry charts.Registry
	stages   []Stage
}

type RunnerOption func(*Runner)

// WithRegistry replaces the default chart registry.
func WithRegistry(r charts.Registry) RunnerOption {
	return func(runner *Runner) {
		runner.registry = r
	}
}

func NewRunner(cfg *config.Config, mode Mode, opts ...RunnerOption) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	r := &Runner{
		config:   cfg,
		registry: charts.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.stages = []Stage{
		{Name: "load", Run: r.load},
		{Name: "clean", Run: r.clean},
		{Name: "aggregate", Run: r.aggregate},
	}
	if mode == ModeReport {
		r.stages = append(r.stages, Stage{Name: "render", Run: r.render})
	}
	r.stages = append(r.stages, Stage{Name: "build", Run: r.build})
	if mode == ModeReport {
		r.stages = append(r.stages, Stage{Name: "compose", Run: r.compose})
	}
	return r, nil
}

func (r *Runner) Stages() []string {
	names := make([]string, len(r.stages))
	for i, s := range r.stages {
		names[i] = s.Name
	}
	return names
}

// Run executes the stages in order and stops at the first error. The returned context
// holds whatever the completed stages produced.
func (r *Runner) Run(ctx context.Context) (*Context, error) {
	pc := &Context{
		RunID:  uuid.New(),
		Config: r.config,
	}

	runLogger := zerolog.Ctx(ctx).With().Str("run_id", pc.RunID.String()).Logger()
	runLogger.Info().
		Str("input", r.config.Input.Path).
		Str("config", r.config.File).
		Msg("run started")
	started := time.Now()

	for _, stage := range r.stages {
		logger := runLogger.With().Str("stage", stage.Name).Logger()
		stageCtx := logger.WithContext(ctx)

		stageStarted := time.Now()
		if err := stage.Run(stageCtx, pc); err != nil {
			logger.Error().Err(err).Msg("stage failed")
			return pc, fmt.Errorf("%s stage: %w", stage.Name, err)
		}
		logger.Debug().Dur("took", time.Since(stageStarted)).Msg("stage finished")
	}

	runLogger.Info().Dur("took", time.Since(started)).Msg("run finished")
	return pc, nil
}

func (r *Runner) load(ctx context.Context, pc *Context) error {
	l := loader.NewLoader(loader.Options{
		Delimiter: loader.Delimiter(r.config.Input.Delimiter),
		Sheet:     r.config.Input.Sheet,
	})
	raw, err := l.Load(ctx, r.config.Input.Path)
	if err != nil {
		return err
	}
	pc.Raw = raw
	return nil
}

func (r *Runner) clean(ctx context.Context, pc *Context) error {
	c, err := cleaner.NewCleaner(r.config.Layout)
	if err != nil {
		return err
	}
	table, err := c.Clean(ctx, pc.Raw)
	if err != nil {
		return err
	}
	pc.Table = table
	pc.Raw = nil
	return nil
}

func (r *Runner) aggregate(ctx context.Context, pc *Context) error {
	ms, err := metrics.Aggregate(ctx, pc.Table, metrics.Options{
		Year:         r.config.Report.Year,
		TopCustomers: r.config.Report.TopCustomers,
		PieThreshold: r.config.Report.PieThreshold,
		FacetGroups:  r.config.Report.FacetGroups,
	})
	if err != nil {
		return err
	}
	pc.Metrics = ms
	return nil
}

func (r *Runner) render(ctx context.Context, pc *Context) error {
	v, err := charts.NewVisualizer(r.registry, charts.Options{
		WidthInches:  r.config.Charts.Width,
		HeightInches: r.config.Charts.Height,
	})
	if err != nil {
		return err
	}
	pc.Charts = v.RenderAll(ctx, charts.Plan(pc.Metrics))
	return nil
}

func (r *Runner) build(_ context.Context, pc *Context) error {
	pc.Report = report.NewBuilder(r.config.Report.Title).Build(pc.Metrics, pc.Charts)
	return nil
}

func (r *Runner) compose(ctx context.Context, pc *Context) error {
	reporter, err := pdf.NewReporter(pdf.Options{
		OutputPath:         r.config.Output.Path,
		VisualizationsPath: r.config.Output.VisualizationsPath,
		KeepVisualizations: r.config.Output.KeepVisualizations,
	})
	if err != nil {
		return domain.WrapError(domain.ErrCompose, "compose", err)
	}
	return reporter.Handle(ctx, pc.Report)
}
