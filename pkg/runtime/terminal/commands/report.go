package commands

import (
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/sales-atlas/pkg/services/pipeline"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type ReportCmd struct {
	printSummary bool
	env          Environment
	reporter     *export.Reporter
}

func NewReportCmd(env Environment, reporter *export.Reporter) *cobra.Command {
	rc := &ReportCmd{env: env, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the PDF sales report from a distributor export",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}

	cmd.Flags().BoolVar(&rc.printSummary, "print-summary", false, "Also print the report tables to stdout")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cfg, err := rc.env(cmd)
	if err != nil {
		return err
	}

	runner, err := pipeline.NewRunner(cfg, pipeline.ModeReport)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	pc, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("output", cfg.Output.Path).
		Int("charts", len(pc.Report.RenderedCharts())).
		Int("skipped_charts", len(pc.Charts)-len(pc.Report.RenderedCharts())).
		Msg("sales report generated")

	if rc.printSummary {
		return rc.reporter.Handle(pc.Report)
	}
	return nil
}
