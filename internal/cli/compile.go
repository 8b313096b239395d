package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/itemcat/internal/catalog"
	"github.com/roach88/itemcat/internal/compiler"
	"github.com/roach88/itemcat/internal/config"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompileSummary is the result of compiling a raw directory into the catalog.
type CompileSummary struct {
	Source     string                 `json:"source"`
	Output     string                 `json:"output"`
	BackupPath string                 `json:"backup_path,omitempty"`
	Files      int                    `json:"files"`
	Items      int                    `json:"items"`
	Processed  int                    `json:"processed"`
	Skipped    int                    `json:"skipped"`
	Errored    int                    `json:"errored"`
	Problems   []compiler.FileProblem `json:"problems,omitempty"`
	Collisions []compiler.Collision   `json:"collisions,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <source-dir>",
		Short: "Compile raw item metadata into the catalog",
		Long: `Compile every raw metadata file in a directory into the canonical catalog.

Files missing a required field are skipped with a warning; files that are
not valid JSON are counted as errors. Neither stops the compilation. The
existing catalog is backed up before it is replaced.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default: configured catalog)")

	return cmd
}

func runCompile(opts *CompileOptions, sourceDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.setup(cmd)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error(), nil)
	}

	output := opts.Output
	if output == "" {
		output = cfg.Catalog
	}

	summary, err := compileAndWrite(opts.RootOptions, cfg, sourceDir, output)
	if err != nil {
		return reportCompileError(formatter, err)
	}

	if formatter.IsJSON() {
		return formatter.Success(summary)
	}
	printCompileSummary(formatter, summary)
	return nil
}

// compileStep tags a failure with the phase it happened in.
type compileStep struct {
	code string
	err  error
}

func (e *compileStep) Error() string { return e.err.Error() }
func (e *compileStep) Unwrap() error { return e.err }

// compileAndWrite compiles sourceDir and writes the catalog to output.
func compileAndWrite(opts *RootOptions, cfg config.Config, sourceDir, output string) (*CompileSummary, error) {
	order, err := cfg.Order()
	if err != nil {
		return nil, &compileStep{code: ErrCodeConfig, err: err}
	}

	c, err := compiler.New(compiler.Options{
		Fields:  cfg.Fields,
		Pattern: cfg.Patterns.Metadata,
		Order:   order,
		Logger:  opts.logger,
	})
	if err != nil {
		return nil, &compileStep{code: ErrCodeConfig, err: err}
	}

	result, err := c.Compile(sourceDir)
	if err != nil {
		return nil, &compileStep{code: readErrorCode(err), err: err}
	}

	wopts := cfg.WriteOptions()
	wopts.Now = opts.now
	written, err := catalog.Write(output, result.Items, wopts)
	if err != nil {
		return nil, &compileStep{code: ErrCodeWriteFailed, err: err}
	}

	return &CompileSummary{
		Source:     sourceDir,
		Output:     written.Path,
		BackupPath: written.BackupPath,
		Files:      result.Files,
		Items:      len(result.Items),
		Processed:  result.Processed,
		Skipped:    result.Skipped,
		Errored:    result.Errored,
		Problems:   result.Problems,
		Collisions: result.Collisions,
	}, nil
}

func reportCompileError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var step *compileStep
	if errors.As(err, &step) {
		code = step.code
	}
	return commandError(formatter, code, err.Error(), nil)
}

func printCompileSummary(formatter *OutputFormatter, s *CompileSummary) {
	formatter.Printf("✓ Compiled %d item(s) from %d file(s): %d processed, %d skipped, %d errored\n",
		s.Items, s.Files, s.Processed, s.Skipped, s.Errored)

	for _, p := range s.Problems {
		formatter.Printf("  %-8s %s: %s\n", p.Status, p.File, p.Reason)
	}
	for _, c := range s.Collisions {
		formatter.Printf("  ! duplicate %s %s in %v\n", c.Field, c.Value, c.Files)
	}

	if s.BackupPath != "" {
		formatter.Printf("Created backup: %s\n", s.BackupPath)
	}
	formatter.Printf("Wrote catalog to %s\n", s.Output)
}
