// Package config loads itemcat.yaml.
//
// Every path the tools touch is an explicit value here; command-line flags
// override whatever the file sets.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/roach88/itemcat/internal/assets"
	"github.com/roach88/itemcat/internal/catalog"
	"github.com/roach88/itemcat/internal/compiler"
)

// DefaultFile is looked up in the working directory when --config is not set.
const DefaultFile = "itemcat.yaml"

// Config is the on-disk configuration.
type Config struct {
	Catalog   string          `yaml:"catalog"`
	Images    string          `yaml:"images"`
	Database  string          `yaml:"database"`
	BundleDir string          `yaml:"bundle_dir"`
	Locale    string          `yaml:"locale"`
	Backup    Backup          `yaml:"backup"`
	Patterns  Patterns        `yaml:"patterns"`
	Fields    compiler.Fields `yaml:"fields"`
}

// Backup controls the copy taken before the catalog is replaced.
type Backup struct {
	Suffix    string `yaml:"suffix"`
	Timestamp bool   `yaml:"timestamp"`
}

// Patterns are doublestar globs matched against file names.
type Patterns struct {
	Metadata string `yaml:"metadata"`
	Images   string `yaml:"images"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Catalog:   "items.json",
		Images:    "images",
		Database:  "items.db",
		BundleDir: assets.DefaultBundleDir,
		Locale:    catalog.DefaultLocale,
		Backup:    Backup{Suffix: catalog.DefaultBackupSuffix},
		Patterns: Patterns{
			Metadata: compiler.DefaultPattern,
			Images:   assets.DefaultImagePattern,
		},
		Fields: compiler.DefaultFields(),
	}
}

// Load reads path over the defaults. A missing file is only an error when
// explicit is set, i.e. the user named it.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	for _, p := range []struct{ key, value string }{
		{"catalog", c.Catalog},
		{"images", c.Images},
		{"database", c.Database},
		{"bundle_dir", c.BundleDir},
	} {
		if strings.TrimSpace(p.value) == "" {
			return fmt.Errorf("%s is required", p.key)
		}
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("locale %q: %w", c.Locale, err)
	}
	if c.Backup.Suffix == "" {
		return errors.New("backup.suffix is required")
	}
	if strings.ContainsRune(c.Backup.Suffix, os.PathSeparator) {
		return fmt.Errorf("backup.suffix %q must not contain a path separator", c.Backup.Suffix)
	}
	for _, p := range []struct{ key, value string }{
		{"patterns.metadata", c.Patterns.Metadata},
		{"patterns.images", c.Patterns.Images},
	} {
		if p.value == "" || !doublestar.ValidatePattern(p.value) {
			return fmt.Errorf("%s: invalid pattern %q", p.key, p.value)
		}
	}
	if err := c.Fields.Validate(); err != nil {
		return fmt.Errorf("fields: %w", err)
	}
	return nil
}

// Order returns the catalog order for the configured locale.
func (c Config) Order() (*catalog.Order, error) {
	return catalog.NewOrder(c.Locale)
}

// WriteOptions returns the catalog write options for the backup settings.
func (c Config) WriteOptions() catalog.WriteOptions {
	return catalog.WriteOptions{
		BackupSuffix: c.Backup.Suffix,
		Timestamp:    c.Backup.Timestamp,
	}
}
