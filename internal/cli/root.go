// Package cli implements the spendingmap command line: build maps from a job
// manifest or flags, serve them over HTTP, and validate data coverage.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/spending-maps/internal/config"
	"github.com/couchcryptid/spending-maps/internal/observability"
)

// RootOptions holds global flags and the state every subcommand shares.
type RootOptions struct {
	LogLevel  string
	LogFormat string

	// Set by PersistentPreRunE.
	Config *config.Config
	Logger *slog.Logger
}

// ValidLogFormats defines the allowed --log-format values.
var ValidLogFormats = []string{"json", "text"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "spendingmap",
		Short: "Render federal spending choropleth maps",
		Long: `Render federal spending data as interactive choropleth maps
of US congressional districts or states.

Configuration is read from the environment (and a .env file when present);
flags override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = opts.LogLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = opts.LogFormat
			}
			if !slices.Contains(ValidLogFormats, cfg.LogFormat) {
				return fmt.Errorf("invalid log format %q: must be one of %v", cfg.LogFormat, ValidLogFormats)
			}
			opts.Config = cfg
			opts.Logger = observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error), overrides LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "json", "log format (json|text), overrides LOG_FORMAT")

	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}
