package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/itemcat/internal/catalog"
	"github.com/roach88/itemcat/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	DB string // database path
}

// ExportSummary is the result of the export command.
type ExportSummary struct {
	Database string `json:"database"`
	store.Export
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog into a SQLite database",
		Long: `Export the catalog into a SQLite database.

The items table is replaced in a single transaction and each run is
recorded in the exports table under a new export id. A catalog with
duplicate ids or shortnames is rejected and the database is left as it was.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "database path (default: configured database)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.setup(cmd)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error(), nil)
	}
	dbPath := opts.DB
	if dbPath == "" {
		dbPath = cfg.Database
	}

	items, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return commandError(formatter, catalogErrorCode(err), err.Error(), nil)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return commandError(formatter, ErrCodeExportFailed, fmt.Sprintf("opening database %s: %v", dbPath, err), nil)
	}
	defer s.Close()

	exp, err := s.ReplaceItems(cmd.Context(), store.NewExport(cfg.Catalog, opts.now()), items)
	if err != nil {
		return commandError(formatter, ErrCodeExportFailed, err.Error(), nil)
	}
	opts.logger.Infow("Exported catalog", "database", dbPath, "export_id", exp.ID, "items", exp.ItemCount)

	summary := &ExportSummary{Database: dbPath, Export: exp}
	if formatter.IsJSON() {
		return formatter.Success(summary)
	}
	formatter.Printf("✓ Exported %d item(s) to %s (export %s)\n", exp.ItemCount, dbPath, exp.ID)
	return nil
}
