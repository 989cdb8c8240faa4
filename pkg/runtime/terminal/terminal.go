package terminal

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/sales-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	reporter   *export.Reporter
	logOutput  io.Writer
	configPath string
	rootCmd    *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	// Output receives the console summary.
	Output io.Writer
	// LogOutput receives log lines.
	LogOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	cli := &CLI{
		reporter:  export.NewReporter(opts.Output),
		logOutput: opts.LogOutput,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// ExecuteArgs runs the CLI with explicit arguments instead of os.Args.
func (cli *CLI) ExecuteArgs(ctx context.Context, args []string) error {
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := commands.NewReportCmd(cli.environment, cli.reporter)
	cmd.Use = "sales-report"
	cmd.Short = "Sales report generator for distributor exports"
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	flags := cmd.PersistentFlags()
	flags.StringVar(&cli.configPath, "config", "", "Path to a config file (default is ./sales-report.{yaml,toml,json} if present)")
	flags.String("input", "", "Path to the distributor sales export")
	flags.String("output", "", "Path of the generated PDF report")
	flags.Int("year", 0, "Report year (default is the latest year in the export)")
	flags.String("log-level", "", "Log level: trace, debug, info, warn or error")

	cmd.AddCommand(commands.NewSummaryCmd(cli.environment, cli.reporter))

	return cmd
}

func (cli *CLI) environment(cmd *cobra.Command) (context.Context, *config.Config, error) {
	cfg, err := config.LoadConfig(config.Options{
		Path:  cli.configPath,
		Flags: cmd.Flags(),
	})
	if err != nil {
		return nil, nil, err
	}

	logger, err := NewLogger(cfg.Log, cli.logOutput)
	if err != nil {
		return nil, nil, err
	}
	return logger.WithContext(cmd.Context()), cfg, nil
}

// ExitCode maps a run error onto the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrIO):
		return 2
	case errors.Is(err, domain.ErrParse):
		return 3
	case errors.Is(err, domain.ErrSchema):
		return 4
	case errors.Is(err, domain.ErrCompose):
		return 5
	default:
		return 1
	}
}
