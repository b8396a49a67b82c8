package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gkquad/internal/config"
	"github.com/roach88/gkquad/internal/engine"
	"github.com/roach88/gkquad/internal/integrand"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is loaded by the root command before any subcommand runs.
	// Subcommands executed on their own (tests) fall back to defaults.
	Config *config.Config

	// Registry is the integrand catalogue. Nil means integrand.Default().
	Registry *integrand.Registry

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gkquad CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gkquad",
		Short: "gkquad - adaptive Gauss-Kronrod integration",
		Long: `Adaptive numerical integration with a 7-point Gauss / 15-point Kronrod rule.

The worst region is bisected until the estimated error meets the absolute
or relative tolerance. Jobs can be run from the command line, from CUE job
files, or as YAML test scenarios, and runs can be recorded to SQLite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			opts.Config = cfg
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: ./gkquad.yaml or $XDG_CONFIG_HOME/gkquad/gkquad.yaml)")

	// Add subcommands
	cmd.AddCommand(NewIntegrateCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewListCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// config returns the loaded configuration or the defaults.
func (o *RootOptions) config() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

// registry returns the integrand catalogue.
func (o *RootOptions) registry() *integrand.Registry {
	if o.Registry == nil {
		return integrand.Default()
	}
	return o.Registry
}

// logger builds the stderr logger: Debug with --verbose, otherwise the
// configured level.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(o.config().Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// storePath returns the --db flag when set, else the configured path.
func (o *RootOptions) storePath(flag string) string {
	if flag != "" {
		return flag
	}
	return o.config().Store.Path
}
