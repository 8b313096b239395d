package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/roach88/itemcat/internal/compiler"
)

// DefaultBundleDir is the item bundle directory relative to the install root.
const DefaultBundleDir = "Bundles/items"

// DefaultImagePattern selects item images in the bundle directory.
const DefaultImagePattern = "*.png"

// InstallError explains why an installation path was rejected.
type InstallError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InstallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// Installation is a validated game client installation.
type Installation struct {
	Root          string
	BundleDir     string
	MetadataFiles []string
}

// OpenInstallation checks that root exists, that it contains the bundle
// directory, and that the bundle directory holds at least one file matching
// metadataPattern.
func OpenInstallation(root, bundleDir, metadataPattern string) (*Installation, error) {
	if bundleDir == "" {
		bundleDir = DefaultBundleDir
	}
	if metadataPattern == "" {
		metadataPattern = compiler.DefaultPattern
	}

	if err := requireDir(root); err != nil {
		return nil, &InstallError{Path: root, Reason: "installation directory does not exist", Err: err}
	}

	items := filepath.Join(root, filepath.FromSlash(bundleDir))
	if err := requireDir(items); err != nil {
		return nil, &InstallError{Path: items, Reason: "bundles directory not found", Err: err}
	}

	files, err := compiler.MatchFiles(items, metadataPattern)
	if err != nil {
		return nil, &InstallError{Path: items, Reason: "cannot list bundles directory", Err: err}
	}
	if len(files) == 0 {
		return nil, &InstallError{Path: items, Reason: "no item metadata files found"}
	}

	return &Installation{Root: root, BundleDir: items, MetadataFiles: files}, nil
}

// IsNotFound reports whether err is an InstallError caused by a missing
// directory.
func IsNotFound(err error) bool {
	var installErr *InstallError
	return errors.As(err, &installErr) && errors.Is(installErr.Err, fs.ErrNotExist)
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	return nil
}
