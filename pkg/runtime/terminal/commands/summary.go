package commands

import (
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/sales-atlas/pkg/services/pipeline"
	"github.com/spf13/cobra"
)

type SummaryCmd struct {
	env      Environment
	reporter *export.Reporter
}

func NewSummaryCmd(env Environment, reporter *export.Reporter) *cobra.Command {
	sc := &SummaryCmd{env: env, reporter: reporter}
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the sales metrics tables without writing a PDF",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}
}

func (sc *SummaryCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cfg, err := sc.env(cmd)
	if err != nil {
		return err
	}

	runner, err := pipeline.NewRunner(cfg, pipeline.ModeSummary)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	pc, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	return sc.reporter.Handle(pc.Report)
}
