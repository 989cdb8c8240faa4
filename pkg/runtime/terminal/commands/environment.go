package commands

import (
	"context"

	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/spf13/cobra"
)

// Environment resolves the configuration and a logger-carrying context for one invocation.
type Environment func(cmd *cobra.Command) (context.Context, *config.Config, error)
