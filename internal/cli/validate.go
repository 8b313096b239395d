package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/itemcat/internal/validator"
)

// DefaultListLimit caps the missing and orphaned image listings.
const DefaultListLimit = 10

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Limit int // 0 lists everything
}

// ValidationResult is the JSON payload of the validate command.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Catalog string            `json:"catalog"`
	Images  string            `json:"images"`
	Summary validator.Summary `json:"summary"`
	Report  *validator.Report `json:"report"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the catalog for consistency",
		Long: `Check the catalog for consistency without modifying it.

Critical issues: missing or mistyped id, shortname or name, and duplicate
ids or shortnames. Warnings: blank names, missing descriptions and records
out of shortname order. Missing and orphaned images are informational.

Exit codes:
  0 - No critical issues
  1 - One or more critical issues
  2 - Command error (catalog missing or not a JSON array)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", DefaultListLimit, "max missing/orphaned images to list (0 = all)")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.setup(cmd)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error(), nil)
	}
	if opts.Limit < 0 {
		return commandError(formatter, ErrCodeInvalidInput, fmt.Sprintf("--limit must not be negative, got %d", opts.Limit), nil)
	}

	doc, err := validator.LoadDocument(cfg.Catalog)
	if err != nil {
		code := ErrCodeLoadFailed
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return commandError(formatter, code, err.Error(), nil)
	}

	order, err := cfg.Order()
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error(), nil)
	}

	report, err := validator.Validate(doc, cfg.Images, validator.Options{
		Order:        order,
		ImagePattern: cfg.Patterns.Images,
	})
	if err != nil {
		return commandError(formatter, ErrCodeScanError, err.Error(), nil)
	}
	opts.logger.Debugw("Validated catalog", "items", report.Items, "critical", len(report.CriticalIssues))

	result := &ValidationResult{
		Valid:   report.OK(),
		Catalog: cfg.Catalog,
		Images:  cfg.Images,
		Summary: report.Summary(),
		Report:  report,
	}

	if !formatter.IsJSON() {
		printReport(formatter, result, opts.Limit)
	}

	if !report.OK() {
		message := fmt.Sprintf("validation failed with %d critical issue(s)", len(report.CriticalIssues))
		_ = formatter.Failure(ErrCodeValidationFailed, message, result)
		return &ExitError{Code: ExitFailure, ErrCode: ErrCodeValidationFailed, Message: message}
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	formatter.Printf("✓ Catalog is valid\n")
	return nil
}

func printReport(formatter *OutputFormatter, result *ValidationResult, limit int) {
	report := result.Report
	formatter.Printf("Validating catalog: %s (%d items)\n", result.Catalog, report.Items)
	formatter.Printf("Image directory: %s\n\n", result.Images)

	if len(report.CriticalIssues) > 0 {
		formatter.Printf("✗ Critical issues (%d):\n", len(report.CriticalIssues))
		for _, issue := range report.CriticalIssues {
			formatter.Printf("  %s\n", issue)
		}
		formatter.Printf("\n")
	}

	if len(report.Warnings) > 0 {
		formatter.Printf("⚠ Warnings (%d):\n", len(report.Warnings))
		for _, issue := range report.Warnings {
			formatter.Printf("  %s\n", issue)
		}
		formatter.Printf("\n")
	}

	if len(report.MissingImages) > 0 {
		lines := make([]string, len(report.MissingImages))
		for i, m := range report.MissingImages {
			lines[i] = m.String()
		}
		printTruncated(formatter, "Missing images", lines, limit)
	}

	if len(report.OrphanedImages) > 0 {
		printTruncated(formatter, "Orphaned images", report.OrphanedImages, limit)
	}

	s := result.Summary
	formatter.Printf("Summary:\n")
	formatter.Printf("  Items:           %d\n", s.Items)
	formatter.Printf("  Critical issues: %d\n", s.CriticalIssues)
	formatter.Printf("  Warnings:        %d\n", s.Warnings)
	formatter.Printf("  Missing images:  %d\n", s.MissingImages)
	formatter.Printf("  Orphaned images: %d\n\n", s.OrphanedImages)
}

// printTruncated lists at most limit lines, then how many were left out.
func printTruncated(formatter *OutputFormatter, title string, lines []string, limit int) {
	formatter.Printf("%s (%d):\n", title, len(lines))
	shown := lines
	if limit > 0 && len(lines) > limit {
		shown = lines[:limit]
	}
	for _, line := range shown {
		formatter.Printf("  %s\n", line)
	}
	if len(shown) < len(lines) {
		formatter.Printf("  ... and %d more\n", len(lines)-len(shown))
	}
	formatter.Printf("\n")
}
