package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/itemcat/internal/assets"
	"github.com/roach88/itemcat/internal/catalog"
)

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	SkipImages bool
}

// UpdateSummary is the result of refreshing the catalog from an installation.
type UpdateSummary struct {
	Install string          `json:"install"`
	Before  int             `json:"before"`
	After   int             `json:"after"`
	Delta   int             `json:"delta"`
	Compile *CompileSummary `json:"compile"`
	Images  *ImagesSummary  `json:"images,omitempty"`
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <install-path>",
		Short: "Refresh the catalog and images from a game installation",
		Long: `Refresh the item catalog and images from a game client installation.

The installation must contain the bundle directory with at least one item
metadata file. The catalog is recompiled from those files (the previous
catalog is kept as a backup) and new or updated images are copied.

Exit codes:
  0 - Catalog updated (individual skipped files or image failures are reported)
  2 - Command error (invalid installation, unwritable catalog, etc.)

Examples:
  itemcat update "/home/user/.steam/steam/steamapps/common/Rust"
  itemcat update ./client --skip-images --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.SkipImages, "skip-images", false, "only update the catalog")

	return cmd
}

func runUpdate(opts *UpdateOptions, root string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.setup(cmd)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error(), nil)
	}

	inst, err := assets.OpenInstallation(root, cfg.BundleDir, cfg.Patterns.Metadata)
	if err != nil {
		return commandError(formatter, installErrorCode(err), err.Error(), nil)
	}
	formatter.Printf("Updating assets from installation: %s\n", inst.Root)
	formatter.Verbosef("Found %d metadata file(s) in %s", len(inst.MetadataFiles), inst.BundleDir)

	before := 0
	current, err := catalog.Load(cfg.Catalog)
	switch {
	case err == nil:
		before = len(current)
		formatter.Printf("Current items in catalog: %d\n", before)
	case errors.Is(err, fs.ErrNotExist):
	default:
		opts.logger.Warnw("Cannot read current catalog; it will be replaced", "catalog", cfg.Catalog, "error", err)
	}

	compiled, err := compileAndWrite(opts.RootOptions, cfg, inst.BundleDir, cfg.Catalog)
	if err != nil {
		return reportCompileError(formatter, err)
	}

	summary := &UpdateSummary{
		Install: inst.Root,
		Before:  before,
		After:   compiled.Items,
		Delta:   compiled.Items - before,
		Compile: compiled,
	}

	if !formatter.IsJSON() {
		printCompileSummary(formatter, compiled)
		formatter.Printf("Items metadata updated: %d total items (%s items)\n", summary.After, formatDelta(summary.Delta))
	}

	if !opts.SkipImages {
		images, err := syncImages(cfg, inst.BundleDir, opts.logger)
		if err != nil {
			return commandError(formatter, syncErrorCode(err), fmt.Sprintf("catalog updated but images failed: %v", err), nil)
		}
		summary.Images = images
		if !formatter.IsJSON() {
			printImagesSummary(formatter, images)
		}
	}

	if formatter.IsJSON() {
		return formatter.Success(summary)
	}
	formatter.Printf("✓ Asset update completed\n")
	return nil
}

// formatDelta formats a signed item count difference, e.g. "+3" or "-1".
func formatDelta(delta int) string {
	return fmt.Sprintf("%+d", delta)
}
