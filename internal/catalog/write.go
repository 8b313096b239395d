package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultBackupSuffix is appended to the catalog path to name its backup.
const DefaultBackupSuffix = ".backup"

// WriteOptions controls how Write names the backup of the previous file.
type WriteOptions struct {
	// BackupSuffix defaults to DefaultBackupSuffix.
	BackupSuffix string

	// Timestamp appends ".<unix millis>" to the backup name so earlier
	// backups are kept.
	Timestamp bool

	// Now defaults to time.Now.
	Now func() time.Time
}

// WriteResult describes a completed write.
type WriteResult struct {
	Path       string `json:"path"`
	BackupPath string `json:"backup_path,omitempty"`
	Count      int    `json:"count"`
}

// WriteError reports a failed filesystem step of Write.
type WriteError struct {
	Op   string // "backup", "encode", "write", "rename"
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// BackupPath returns the backup filename Write uses for path.
func BackupPath(path string, opts WriteOptions) string {
	suffix := opts.BackupSuffix
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}
	backup := path + suffix
	if opts.Timestamp {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		backup = fmt.Sprintf("%s.%d", backup, now().UnixMilli())
	}
	return backup
}

// Write encodes items and replaces the catalog at path.
//
// If a file already exists at path it is first copied to BackupPath. The new
// content is written to a temporary file in the same directory and renamed
// over path, so readers never observe a partially written catalog.
// Items are written in the order given; callers sort them first.
func Write(path string, items Catalog, opts WriteOptions) (*WriteResult, error) {
	data, err := Marshal(items)
	if err != nil {
		return nil, &WriteError{Op: "encode", Path: path, Err: err}
	}

	result := &WriteResult{Path: path, Count: len(items)}

	backup, perm, err := backupExisting(path, opts)
	if err != nil {
		return nil, err
	}
	result.BackupPath = backup

	if err := writeAtomic(path, data, perm); err != nil {
		return nil, err
	}
	return result, nil
}

// defaultPerm is the mode of a newly created catalog.
const defaultPerm fs.FileMode = 0644

// backupExisting copies path to its backup name and returns the backup path
// with the permissions of the existing file. Returns "" and defaultPerm when
// there is nothing to back up.
func backupExisting(path string, opts WriteOptions) (string, fs.FileMode, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", defaultPerm, nil
	}
	if err != nil {
		return "", 0, &WriteError{Op: "backup", Path: path, Err: err}
	}
	if info.IsDir() {
		return "", 0, &WriteError{Op: "backup", Path: path, Err: errors.New("is a directory")}
	}

	perm := info.Mode().Perm()
	backup := BackupPath(path, opts)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, &WriteError{Op: "backup", Path: path, Err: err}
	}
	if err := os.WriteFile(backup, data, perm); err != nil {
		return "", 0, &WriteError{Op: "backup", Path: backup, Err: err}
	}
	return backup, perm, nil
}

func writeAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return &WriteError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
