package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/itemcat/internal/catalog"
)

// ErrNoExport is returned by LatestExport when nothing was exported yet.
var ErrNoExport = errors.New("no export recorded")

// ListItems returns the exported items in catalog order.
func (s *Store) ListItems(ctx context.Context) (catalog.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, shortname, name, description
		FROM items
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := catalog.Catalog{}
	for rows.Next() {
		var item catalog.Item
		if err := rows.Scan(&item.ID, &item.Shortname, &item.Name, &item.Description); err != nil {
			return nil, fmt.Errorf("list items: scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// CountItems returns the number of exported items.
func (s *Store) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// LatestExport returns the most recent export record.
func (s *Store) LatestExport(ctx context.Context) (Export, error) {
	var (
		exp Export
		at  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT export_id, item_count, exported_at, source
		FROM exports
		ORDER BY exported_at DESC, rowid DESC
		LIMIT 1
	`).Scan(&exp.ID, &exp.ItemCount, &at, &exp.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return Export{}, ErrNoExport
	}
	if err != nil {
		return Export{}, fmt.Errorf("latest export: %w", err)
	}
	exp.ExportedAt, err = time.Parse(time.RFC3339, at)
	if err != nil {
		return Export{}, fmt.Errorf("latest export: parse time %q: %w", at, err)
	}
	return exp, nil
}
