package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomobiledoc/internal/configloader"
	"github.com/yaklabco/gomobiledoc/internal/logging"
	"github.com/yaklabco/gomobiledoc/internal/ui/pretty"
	"github.com/yaklabco/gomobiledoc/pkg/config"
)

var errConfig = errors.New("configuration error")

// loadConfig resolves the configuration for cmd with overrides taken from its
// flags, and applies the resulting log level.
func (g *globalOptions) loadConfig(cmd *cobra.Command, overrides *config.Config) (*config.Config, error) {
	if overrides == nil {
		overrides = &config.Config{}
	}
	overrides.Debug = g.debug

	result, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		ExplicitPath: g.configPath,
		CLIConfig:    overrides,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}

	cfg := result.Config
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	logging.SetLevel(cfg.LogLevel)

	logger := logging.Default()
	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	if len(result.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldConfigSource, result.LoadedFrom)
	}
	return cfg, nil
}

// styles returns output styles for the command's stdout.
func (g *globalOptions) styles(cmd *cobra.Command) *pretty.Styles {
	return pretty.NewStyles(pretty.IsColorEnabled(g.color, cmd.OutOrStdout()))
}

// commandContext returns the command's context carrying a logger tagged
// with the command name.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.With(ctx, logging.FieldCommand, cmd.Name())
}
