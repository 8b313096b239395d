package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/itemcat/internal/catalog"
)

// TimeLayout is the encoding of exports.exported_at. The fraction is fixed
// width so that text order matches time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Export describes one export run.
type Export struct {
	ID         string    `json:"export_id"`
	ItemCount  int       `json:"item_count"`
	ExportedAt time.Time `json:"exported_at"`
	Source     string    `json:"source,omitempty"`
}

// NewExport returns an Export with a fresh random id.
func NewExport(source string, now time.Time) Export {
	return Export{
		ID:         uuid.NewString(),
		ExportedAt: now.UTC(),
		Source:     source,
	}
}

// ReplaceItems rewrites the items table with the given catalog and records
// the export. Positions follow the slice order. The whole operation runs in
// one transaction; on any error the previous contents are kept.
//
// The id primary key and the shortname UNIQUE constraint reject catalogs
// with duplicate keys.
func (s *Store) ReplaceItems(ctx context.Context, exp Export, items catalog.Catalog) (Export, error) {
	if exp.ID == "" {
		return exp, errors.New("replace items: export id is empty")
	}
	if _, err := uuid.Parse(exp.ID); err != nil {
		return exp, fmt.Errorf("replace items: invalid export id %q: %w", exp.ID, err)
	}
	exp.ItemCount = len(items)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return exp, fmt.Errorf("replace items: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return exp, fmt.Errorf("replace items: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (id, shortname, name, description, position)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return exp, fmt.Errorf("replace items: prepare: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err := stmt.ExecContext(ctx, item.ID, item.Shortname, item.Name, item.Description, i); err != nil {
			return exp, fmt.Errorf("replace items: insert %s (id %d): %w", item.Shortname, item.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO exports (export_id, item_count, exported_at, source)
		VALUES (?, ?, ?, ?)
	`, exp.ID, exp.ItemCount, exp.ExportedAt.UTC().Format(TimeLayout), exp.Source)
	if err != nil {
		return exp, fmt.Errorf("replace items: record export: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return exp, fmt.Errorf("replace items: commit: %w", err)
	}
	return exp, nil
}
