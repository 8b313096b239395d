package assets

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/itemcat/internal/testutil"
)

func TestOpenInstallation(t *testing.T) {
	root := t.TempDir()
	testutil.WriteJSON(t, root, "Bundles/items/rifle.ak.json", testutil.RawItem(1, "rifle.ak", "Assault Rifle", ""))
	testutil.WriteImages(t, filepath.Join(root, "Bundles", "items"), "rifle.ak")

	inst, err := OpenInstallation(root, "", "")
	require.NoError(t, err)
	assert.Equal(t, root, inst.Root)
	assert.Equal(t, filepath.Join(root, "Bundles", "items"), inst.BundleDir)
	assert.Equal(t, []string{"rifle.ak.json"}, inst.MetadataFiles)
}

func TestOpenInstallationMissingRoot(t *testing.T) {
	_, err := OpenInstallation(filepath.Join(t.TempDir(), "Rust"), "", "")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "installation directory does not exist")
}

func TestOpenInstallationMissingBundles(t *testing.T) {
	root := t.TempDir()
	_, err := OpenInstallation(root, "", "")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "bundles directory not found")
}

func TestOpenInstallationWithoutMetadata(t *testing.T) {
	root := t.TempDir()
	testutil.WriteImages(t, filepath.Join(root, "Bundles", "items"), "rifle.ak")

	_, err := OpenInstallation(root, "", "")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))

	var installErr *InstallError
	require.True(t, errors.As(err, &installErr))
	assert.Equal(t, "no item metadata files found", installErr.Reason)
}

func TestOpenInstallationCustomBundleDir(t *testing.T) {
	root := t.TempDir()
	testutil.WriteJSON(t, root, "data/items/a.json", testutil.RawItem(1, "a", "A", ""))

	inst, err := OpenInstallation(root, "data/items", "*.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "data", "items"), inst.BundleDir)
}
