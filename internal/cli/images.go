package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/itemcat/internal/assets"
	"github.com/roach88/itemcat/internal/config"
)

// ImagesSummary is the result of an image sync.
type ImagesSummary struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	*assets.SyncResult
}

// NewImagesCommand creates the images command.
func NewImagesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images <install-path>",
		Short: "Copy new and updated item images",
		Long: `Copy item images from a game client installation into the image directory.

An image is copied only when it is missing from the image directory or the
installed file is newer. Existing images are never deleted. A file that
cannot be copied is reported and the remaining images are still copied.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImages(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runImages(opts *RootOptions, root string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.setup(cmd)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error(), nil)
	}

	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return commandError(formatter, ErrCodeNotFound, "installation directory does not exist: "+root, nil)
	}

	summary, err := syncImages(cfg, filepath.Join(root, filepath.FromSlash(cfg.BundleDir)), opts.logger)
	if err != nil {
		return commandError(formatter, syncErrorCode(err), err.Error(), nil)
	}

	if formatter.IsJSON() {
		return formatter.Success(summary)
	}
	printImagesSummary(formatter, summary)
	return nil
}

func syncImages(cfg config.Config, source string, logger *zap.SugaredLogger) (*ImagesSummary, error) {
	result, err := assets.SyncImages(source, cfg.Images, assets.SyncOptions{
		Pattern: cfg.Patterns.Images,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	return &ImagesSummary{Source: source, Destination: cfg.Images, SyncResult: result}, nil
}

func syncErrorCode(err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrCodeNotFound
	}
	return ErrCodeWriteFailed
}

func printImagesSummary(formatter *OutputFormatter, s *ImagesSummary) {
	mark := "✓"
	if s.Failed() > 0 {
		mark = "⚠"
	}
	formatter.Printf("%s Images: %d copied, %d up to date, %d failed (%s -> %s)\n",
		mark, s.Copied, s.UpToDate, s.Failed(), s.Source, s.Destination)
	for _, f := range s.Failures {
		formatter.Printf("  ✗ %s: %s\n", f.File, f.Error)
	}
}
