package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/itemcat/internal/config"
	"github.com/roach88/itemcat/internal/log"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Catalog    string // overrides config catalog
	Images     string // overrides config images
	LogLevel   string

	// Now is the clock used for backup names and export records.
	Now func() time.Time

	cfg    *config.Config
	logger *zap.SugaredLogger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the itemcat CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "itemcat",
		Short: "itemcat - item catalog maintenance",
		Long: `Maintain the item catalog of the companion app.

Extracts item metadata and icons from a game client installation, merges
them into the canonical JSON catalog, adds items by hand and validates the
result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+config.DefaultFile+" if present)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "catalog file (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Images, "images", "", "image directory (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", string(log.LevelWarn), "log level (debug|info|warn|error)")

	// Add subcommands
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewImagesCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// Main runs the CLI with os.Args and returns the process exit code.
func Main() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	_ = log.Sync()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		// Already reported by the command
		return exitErr.Code
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return ExitCommandError
}

// setup resolves the configuration and logger once per process. Commands
// call it first so they also work when built without the root command.
func (o *RootOptions) setup(cmd *cobra.Command) (config.Config, error) {
	if o.cfg != nil {
		return *o.cfg, nil
	}

	level := log.LevelWarn
	if o.LogLevel != "" {
		parsed, err := log.ParseLevel(o.LogLevel)
		if err != nil {
			return config.Config{}, err
		}
		level = parsed
	}
	if o.Verbose {
		level = log.LevelDebug
	}
	if err := log.Init(log.Config{Level: level, Writer: cmd.ErrOrStderr()}); err != nil {
		return config.Config{}, err
	}
	o.logger = log.Get()

	cfg, err := config.Load(o.ConfigPath, o.ConfigPath != "")
	if err != nil {
		return config.Config{}, err
	}
	if o.Catalog != "" {
		cfg.Catalog = o.Catalog
	}
	if o.Images != "" {
		cfg.Images = o.Images
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	o.logger.Debugw("Resolved configuration", "catalog", cfg.Catalog, "images", cfg.Images, "locale", cfg.Locale)
	o.cfg = &cfg
	return cfg, nil
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  o.Format,
		Writer:  cmd.OutOrStdout(),
		Diag:    cmd.ErrOrStderr(),
		Verbose: o.Verbose,
	}
}

func (o *RootOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
