package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/roach88/itemcat/internal/compiler"
)

// CopyFailure records one image that could not be copied.
type CopyFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// SyncResult summarizes an image sync.
type SyncResult struct {
	Matched  int           `json:"matched"`
	Copied   int           `json:"copied"`
	UpToDate int           `json:"up_to_date"`
	Failures []CopyFailure `json:"failures,omitempty"`
}

// Failed returns the number of images that could not be copied.
func (r *SyncResult) Failed() int {
	return len(r.Failures)
}

// SyncOptions configures SyncImages.
type SyncOptions struct {
	Pattern string
	Logger  *zap.SugaredLogger
}

// SyncImages copies images matching opts.Pattern from src into dst.
//
// A file is copied when dst has no file of that name or when the source
// modification time is strictly after the destination's. dst is created if
// needed. A failure on one file is recorded and the sync continues; the
// returned error is reserved for an unreadable src or an uncreatable dst.
func SyncImages(src, dst string, opts SyncOptions) (*SyncResult, error) {
	if opts.Pattern == "" {
		opts.Pattern = DefaultImagePattern
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	files, err := compiler.MatchFiles(src, opts.Pattern)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	if _, err := os.Stat(dst); os.IsNotExist(err) {
		if err := os.MkdirAll(dst, 0755); err != nil {
			return nil, fmt.Errorf("creating image directory: %w", err)
		}
		log.Infow("Created image directory", "dir", dst)
	}

	result := &SyncResult{Matched: len(files)}
	for _, name := range files {
		copied, err := syncFile(filepath.Join(src, name), filepath.Join(dst, name))
		if err != nil {
			log.Warnw("Failed to copy image", "file", name, "error", err)
			result.Failures = append(result.Failures, CopyFailure{File: name, Error: err.Error()})
			continue
		}
		if copied {
			result.Copied++
		} else {
			result.UpToDate++
		}
	}

	log.Infow("Synced item images", "copied", result.Copied, "up_to_date", result.UpToDate, "failed", result.Failed())
	if result.Failed() > 0 {
		log.Warn("Some images could not be copied; files may be in use")
	}
	return result, nil
}

// NeedsCopy reports whether src should be copied over dst.
func NeedsCopy(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	dstInfo, err := os.Stat(dst)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return srcInfo.ModTime().After(dstInfo.ModTime()), nil
}

func syncFile(src, dst string) (bool, error) {
	needed, err := NeedsCopy(src, dst)
	if err != nil || !needed {
		return false, err
	}
	if err := CopyFile(src, dst); err != nil {
		return false, err
	}
	return true, nil
}

// CopyFile copies the content of src to dst, replacing dst, and gives dst
// the modification time of src.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
