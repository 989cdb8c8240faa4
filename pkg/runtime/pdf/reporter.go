package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"
)

func init() {
	// pdfcpu would otherwise create a config directory under the user's home.
	api.DisableConfigDir()
}

type Options struct {
	OutputPath string
	// VisualizationsPath receives a copy of the chart pages when KeepVisualizations is set.
	VisualizationsPath string
	KeepVisualizations bool
}

// Reporter writes the report as a single PDF: the summary pages followed by one page per chart.
type Reporter struct {
	opts Options
}

func NewReporter(opts Options) (*Reporter, error) {
	if opts.OutputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if opts.KeepVisualizations && opts.VisualizationsPath == "" {
		opts.VisualizationsPath = filepath.Join(filepath.Dir(opts.OutputPath), "visualizations.pdf")
	}
	return &Reporter{opts: opts}, nil
}

// Handle composes the report. The output path is only replaced once the merged
// document is complete and valid.
func (r *Reporter) Handle(ctx context.Context, report *domain.Report) error {
	logger := zerolog.Ctx(ctx)

	workDir, err := os.MkdirTemp(filepath.Dir(r.opts.OutputPath), ".sales-report-*")
	if err != nil {
		return domain.WrapError(domain.ErrCompose, "compose", fmt.Errorf("create work dir: %w", err))
	}
	defer os.RemoveAll(workDir)

	summary := filepath.Join(workDir, "summary.pdf")
	visuals := filepath.Join(workDir, "visualizations.pdf")
	merged := filepath.Join(workDir, "merged.pdf")

	if err := writeSummary(report, summary); err != nil {
		return domain.WrapError(domain.ErrCompose, "compose", err)
	}
	if err := writeVisualizations(report, visuals); err != nil {
		return domain.WrapError(domain.ErrCompose, "compose", err)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.MergeCreateFile([]string{summary, visuals}, merged, false, conf); err != nil {
		return domain.WrapError(domain.ErrCompose, "compose", fmt.Errorf("merge pdfs: %w", err))
	}
	if err := api.ValidateFile(merged, conf); err != nil {
		return domain.WrapError(domain.ErrCompose, "compose", fmt.Errorf("validate merged pdf: %w", err))
	}
	pages, err := api.PageCountFile(merged)
	if err != nil {
		return domain.WrapError(domain.ErrCompose, "compose", fmt.Errorf("count pages: %w", err))
	}

	if r.opts.KeepVisualizations {
		if err := os.Rename(visuals, r.opts.VisualizationsPath); err != nil {
			return domain.WrapError(domain.ErrCompose, "compose", fmt.Errorf("keep visualizations: %w", err))
		}
	}
	if err := os.Rename(merged, r.opts.OutputPath); err != nil {
		if r.opts.KeepVisualizations {
			_ = os.Remove(r.opts.VisualizationsPath)
		}
		return domain.WrapError(domain.ErrCompose, "compose", fmt.Errorf("publish report: %w", err))
	}

	logger.Info().
		Str("path", r.opts.OutputPath).
		Int("pages", pages).
		Int("charts", len(report.RenderedCharts())).
		Msg("report written")
	return nil
}
