package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/itemcat/internal/testutil"
)

func writeRawDir(t *testing.T, dir string) {
	t.Helper()
	testutil.WriteJSON(t, dir, "rifle.bolt.json", testutil.RawItem(1588298435, "rifle.bolt", "Bolt Action Rifle", "Long range."))
	testutil.WriteJSON(t, dir, "axe.salvaged.json", testutil.RawItem(-1469578201, "axe.salvaged", "Salvaged Axe", ""))
	testutil.WriteJSON(t, dir, "rifle.ak.json", testutil.RawItem(1545779598, "rifle.ak", "Assault Rifle", "High damage."))
	testutil.WriteJSON(t, dir, "incomplete.json", map[string]any{"itemid": 42, "shortname": "nameless"})
	testutil.WriteFile(t, dir, "broken.json", "{ not json")
	testutil.WriteFile(t, dir, "notes.txt", "ignored")
}

func TestCompile_WritesSortedCatalog(t *testing.T) {
	env := newTestEnv(t)
	raw := filepath.Join(env.dir, "raw")
	writeRawDir(t, raw)

	res := execute(NewCompileCommand(env.rootOpts("text")), "", raw)
	require.NoError(t, res.err, res.stdout)

	assert.Contains(t, res.stdout, "✓ Compiled 3 item(s) from 5 file(s): 3 processed, 1 skipped, 1 errored")
	assert.Contains(t, res.stdout, "incomplete.json")
	assert.Contains(t, res.stdout, "broken.json")
	assert.Contains(t, res.stdout, "Wrote catalog to "+env.catalog)
	assert.NotContains(t, res.stdout, "Created backup")

	items := env.loadCatalog(t)
	assert.Equal(t, []string{"axe.salvaged", "rifle.ak", "rifle.bolt"}, items.Shortnames())
	assert.Equal(t, "", items[0].Description)
}

func TestCompile_OutputFlag(t *testing.T) {
	env := newTestEnv(t)
	raw := filepath.Join(env.dir, "raw")
	writeRawDir(t, raw)
	out := filepath.Join(env.dir, "other.json")

	res := execute(NewCompileCommand(env.rootOpts("text")), "", raw, "-o", out)
	require.NoError(t, res.err)

	assert.FileExists(t, out)
	assert.NoFileExists(t, env.catalog)
}

func TestCompile_BacksUpExistingCatalog(t *testing.T) {
	env := newTestEnv(t)
	env.writeCatalog(t, sampleItems()[:1])
	before := testutil.ReadFile(t, env.catalog)

	raw := filepath.Join(env.dir, "raw")
	writeRawDir(t, raw)

	res := execute(NewCompileCommand(env.rootOpts("text")), "", raw)
	require.NoError(t, res.err)

	backup := env.catalog + ".backup"
	assert.Contains(t, res.stdout, "Created backup: "+backup)
	assert.Equal(t, before, testutil.ReadFile(t, backup))
	assert.Len(t, env.loadCatalog(t), 3)
}

func TestCompile_KeepsCrossFileDuplicates(t *testing.T) {
	env := newTestEnv(t)
	raw := filepath.Join(env.dir, "raw")
	testutil.WriteJSON(t, raw, "a.json", testutil.RawItem(1001, "gun.a", "Gun A", ""))
	testutil.WriteJSON(t, raw, "b.json", testutil.RawItem(1001, "gun.b", "Gun B", ""))

	res := execute(NewCompileCommand(env.rootOpts("text")), "", raw)
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "! duplicate id 1001 in [a.json b.json]")
	assert.Len(t, env.loadCatalog(t), 2)
}

func TestCompile_JSON(t *testing.T) {
	env := newTestEnv(t)
	raw := filepath.Join(env.dir, "raw")
	writeRawDir(t, raw)

	res := execute(NewCompileCommand(env.rootOpts("json")), "", raw)
	require.NoError(t, res.err)

	var summary CompileSummary
	resp := decode(t, res.stdout, &summary)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 5, summary.Files)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Errored)
	assert.Len(t, summary.Problems, 2)
}

func TestCompile_MissingSourceDir(t *testing.T) {
	env := newTestEnv(t)

	res := execute(NewCompileCommand(env.rootOpts("text")), "", filepath.Join(env.dir, "nope"))
	require.Error(t, res.err)

	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error [E005]")
	assert.NoFileExists(t, env.catalog)
}

func TestCompile_UnwritableDestination(t *testing.T) {
	env := newTestEnv(t)
	raw := filepath.Join(env.dir, "raw")
	writeRawDir(t, raw)

	res := execute(NewCompileCommand(env.rootOpts("json")), "", raw, "-o", filepath.Join(env.dir, "missing", "items.json"))
	require.Error(t, res.err)

	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	resp := decode(t, res.stdout, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeWriteFailed, resp.Error.Code)
}

func TestCompile_RequiresArgument(t *testing.T) {
	env := newTestEnv(t)

	res := execute(NewCompileCommand(env.rootOpts("text")), "")
	assert.Error(t, res.err)
}
