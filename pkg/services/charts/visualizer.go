package charts

import (
	"context"
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"gonum.org/v1/plot/vg"
)

const (
	DefaultWidthInches  = 11.0
	DefaultHeightInches = 8.5
)

type Options struct {
	WidthInches  float64
	HeightInches float64
}

// Visualizer renders chart requests. A chart that cannot be drawn is returned as a
// skipped artifact instead of failing the run.
type Visualizer struct {
	registry Registry
	size     Size
}

func NewVisualizer(r Registry, opts Options) (*Visualizer, error) {
	if r == nil {
		return nil, fmt.Errorf("chart registry is nil")
	}
	if opts.WidthInches == 0 {
		opts.WidthInches = DefaultWidthInches
	}
	if opts.HeightInches == 0 {
		opts.HeightInches = DefaultHeightInches
	}
	if opts.WidthInches < 0 || opts.HeightInches < 0 {
		return nil, fmt.Errorf("chart size must be positive, got %.2fx%.2f in", opts.WidthInches, opts.HeightInches)
	}
	return &Visualizer{
		registry: r,
		size: Size{
			Width:  vg.Length(opts.WidthInches) * vg.Inch,
			Height: vg.Length(opts.HeightInches) * vg.Inch,
		},
	}, nil
}

// RenderAll returns exactly one artifact per request, in request order.
func (v *Visualizer) RenderAll(ctx context.Context, reqs []domain.ChartRequest) []domain.ChartArtifact {
	logger := zerolog.Ctx(ctx)

	artifacts := make([]domain.ChartArtifact, 0, len(reqs))
	rendered := 0
	for _, req := range reqs {
		artifact := v.Render(req)
		if artifact.Err != nil {
			logger.Warn().
				Err(artifact.Err).
				Str("chart", req.Name).
				Str("kind", string(req.Kind)).
				Msg("chart skipped")
		} else {
			rendered++
		}
		artifacts = append(artifacts, artifact)
	}

	logger.Info().
		Int("requested", len(reqs)).
		Int("rendered", rendered).
		Msg("charts rendered")
	return artifacts
}

func (v *Visualizer) Render(req domain.ChartRequest) (artifact domain.ChartArtifact) {
	artifact = domain.ChartArtifact{
		Kind:  req.Kind,
		Name:  req.Name,
		Title: req.Title,
	}

	defer func() {
		if r := recover(); r != nil {
			artifact.Image = nil
			artifact.Err = domain.NewError(domain.ErrRender, "render "+req.Name, "renderer panic: %v", r)
		}
	}()

	img, err := v.registry.Render(req, v.size)
	if err != nil {
		artifact.Err = domain.WrapError(domain.ErrRender, "render "+req.Name, err)
		return artifact
	}

	artifact.Image = img
	artifact.Width, artifact.Height = v.size.Pixels()
	return artifact
}
