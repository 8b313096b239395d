package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/itemcat/internal/catalog"
	"github.com/roach88/itemcat/internal/testutil"
)

// testEnv is a scratch workspace holding a catalog path and image directory.
type testEnv struct {
	dir     string
	catalog string
	images  string
	clock   *testutil.StepClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		dir:     dir,
		catalog: filepath.Join(dir, "items.json"),
		images:  filepath.Join(dir, "images"),
		clock:   testutil.NewStepClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), time.Second),
	}
}

func (e *testEnv) rootOpts(format string) *RootOptions {
	return &RootOptions{
		Format:   format,
		Catalog:  e.catalog,
		Images:   e.images,
		LogLevel: "error",
		Now:      e.clock.Now,
	}
}

func (e *testEnv) writeCatalog(t *testing.T, items catalog.Catalog) {
	t.Helper()
	data, err := catalog.Marshal(items)
	require.NoError(t, err)
	testutil.WriteFile(t, e.dir, "items.json", string(data))
}

func (e *testEnv) loadCatalog(t *testing.T) catalog.Catalog {
	t.Helper()
	items, err := catalog.Load(e.catalog)
	require.NoError(t, err)
	return items
}

// install creates a fake game client installation holding the given raw
// records (file name -> content) and images.
func (e *testEnv) install(t *testing.T, raw map[string]any, images ...string) string {
	t.Helper()
	root := filepath.Join(e.dir, "client")
	bundle := filepath.Join(root, "Bundles", "items")
	for name, content := range raw {
		if s, ok := content.(string); ok {
			testutil.WriteFile(t, bundle, name, s)
			continue
		}
		testutil.WriteJSON(t, bundle, name, content)
	}
	testutil.WriteImages(t, bundle, images...)
	return root
}

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(cmd *cobra.Command, stdin string, args ...string) result {
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

// decode parses a JSON response and re-decodes its data into v.
func decode(t *testing.T, stdout string, v any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	if v != nil && resp.Data != nil {
		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, v))
	}
	return resp
}

func sampleItems() catalog.Catalog {
	return catalog.Catalog{
		{ID: -1469578201, Shortname: "axe.salvaged", Name: "Salvaged Axe", Description: "A crude axe."},
		{ID: 1545779598, Shortname: "rifle.ak", Name: "Assault Rifle", Description: "High damage."},
		{ID: 1588298435, Shortname: "rifle.bolt", Name: "Bolt Action Rifle", Description: "Long range."},
	}
}
