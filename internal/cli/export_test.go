package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/itemcat/internal/catalog"
	"github.com/roach88/itemcat/internal/store"
)

func TestExport_WritesDatabase(t *testing.T) {
	env := newTestEnv(t)
	env.writeCatalog(t, sampleItems())
	dbPath := filepath.Join(env.dir, "items.db")

	res := execute(NewExportCommand(env.rootOpts("json")), "", "--db", dbPath)
	require.NoError(t, res.err, res.stdout)

	var summary ExportSummary
	decode(t, res.stdout, &summary)
	assert.Equal(t, dbPath, summary.Database)
	assert.Equal(t, 3, summary.ItemCount)
	_, err := uuid.Parse(summary.ID)
	assert.NoError(t, err)

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	items, err := s.ListItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleItems(), items)

	latest, err := s.LatestExport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary.ID, latest.ID)
	assert.Equal(t, env.catalog, latest.Source)
}

func TestExport_DuplicateKeysRejected(t *testing.T) {
	env := newTestEnv(t)
	items := sampleItems()
	items = append(items, catalog.Item{ID: items[0].ID, Shortname: "zzz", Name: "Copy"})
	env.writeCatalog(t, items)

	res := execute(NewExportCommand(env.rootOpts("text")), "", "--db", filepath.Join(env.dir, "items.db"))
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error [E009]")
}

func TestExport_MissingCatalog(t *testing.T) {
	env := newTestEnv(t)

	res := execute(NewExportCommand(env.rootOpts("text")), "", "--db", filepath.Join(env.dir, "items.db"))
	require.Error(t, res.err)
	assert.Contains(t, res.stdout, "Error [E005]")
}
