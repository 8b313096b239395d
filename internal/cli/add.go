package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/itemcat/internal/assets"
	"github.com/roach88/itemcat/internal/catalog"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	ID          string
	Shortname   string
	Name        string
	Description string
	Image       string
	Yes         bool
}

// AddSummary is the result of the add command.
type AddSummary struct {
	Added      bool          `json:"added"`
	Item       *catalog.Item `json:"item,omitempty"`
	Catalog    string        `json:"catalog"`
	Count      int           `json:"count"`
	BackupPath string        `json:"backup_path,omitempty"`
	ImagePath  string        `json:"image_path,omitempty"`
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one item to the catalog by hand",
		Long: `Add one item to the catalog by hand.

Values not given as flags are asked for on standard input. The item is
rejected when its id or shortname is already in the catalog. Otherwise a
preview is shown and, once confirmed, the catalog is backed up, the item is
inserted in shortname order and the optional image is copied to
<images>/<shortname>.png.

Exit codes:
  0 - Item added, or cancelled at the confirmation prompt
  1 - Duplicate id or shortname
  2 - Command error (invalid input, missing catalog or image, write failure)

Examples:
  itemcat add
  itemcat add --id 9999 --shortname weapon.new --name "New Gun" --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "item id (integer)")
	cmd.Flags().StringVar(&opts.Shortname, "shortname", "", `item shortname, e.g. "weapon.ak"`)
	cmd.Flags().StringVar(&opts.Name, "name", "", `display name, e.g. "AK47"`)
	cmd.Flags().StringVar(&opts.Description, "description", "", "item description")
	cmd.Flags().StringVar(&opts.Image, "image", "", "path to the item image (PNG)")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "add without asking for confirmation")

	return cmd
}

func runAdd(opts *AddOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.setup(cmd)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error(), nil)
	}

	p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err := opts.collect(cmd, p); err != nil {
		return commandError(formatter, ErrCodeInvalidInput, err.Error(), nil)
	}

	id, err := strconv.ParseInt(strings.TrimSpace(opts.ID), 10, 64)
	if err != nil {
		return commandError(formatter, ErrCodeInvalidInput, fmt.Sprintf("item ID must be a valid integer, got %q", opts.ID), nil)
	}
	item := catalog.Item{
		ID:          id,
		Shortname:   opts.Shortname,
		Name:        opts.Name,
		Description: opts.Description,
	}

	items, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return commandError(formatter, catalogErrorCode(err), err.Error(), nil)
	}

	image := strings.TrimSpace(opts.Image)
	if image != "" {
		if info, err := os.Stat(image); err != nil || info.IsDir() {
			return commandError(formatter, ErrCodeNotFound, "image file not found: "+image, nil)
		}
	}

	order, err := cfg.Order()
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error(), nil)
	}

	updated, added, err := items.Add(item, order)
	if err != nil {
		return addError(formatter, err)
	}
	opts.logger.Debugw("Item accepted", "id", added.ID, "shortname", added.Shortname)

	summary := &AddSummary{Catalog: cfg.Catalog, Count: len(items)}

	if !opts.Yes {
		preview, _ := json.MarshalIndent(added, "", "  ")
		fmt.Fprintf(cmd.ErrOrStderr(), "\nNew item to be added:\n%s\n", preview)
		ok, err := p.Confirm("\nDo you want to add this item? (y/N): ")
		if err != nil {
			return commandError(formatter, ErrCodeInvalidInput, err.Error(), nil)
		}
		if !ok {
			if formatter.IsJSON() {
				return formatter.Success(summary)
			}
			formatter.Printf("Operation cancelled.\n")
			return nil
		}
	}

	// Nothing is visible until the catalog is written: the image is staged
	// under a temporary name first and moved into place last.
	var staged *stagedImage
	if image != "" {
		staged, err = stageImage(image, cfg.Images, added, opts.logger)
		if err != nil {
			return commandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("copying image: %v", err), nil)
		}
		defer staged.discard()
	}

	wopts := cfg.WriteOptions()
	wopts.Timestamp = true
	wopts.Now = opts.now
	written, err := catalog.Write(cfg.Catalog, updated, wopts)
	if err != nil {
		return commandError(formatter, ErrCodeWriteFailed, err.Error(), nil)
	}

	if staged != nil {
		if err := staged.commit(); err != nil {
			msg := fmt.Sprintf("installing image: %v", err)
			if rerr := restoreCatalog(cfg.Catalog, written); rerr != nil {
				msg = fmt.Sprintf("%s; restoring catalog: %v", msg, rerr)
			} else {
				opts.logger.Warnw("Restored catalog after failed image install", "catalog", cfg.Catalog)
			}
			return commandError(formatter, ErrCodeWriteFailed, msg, nil)
		}
		summary.ImagePath = staged.dst
	}

	summary.Added = true
	summary.Item = &added
	summary.Count = written.Count
	summary.BackupPath = written.BackupPath

	if formatter.IsJSON() {
		return formatter.Success(summary)
	}
	if summary.BackupPath != "" {
		formatter.Printf("Created backup: %s\n", summary.BackupPath)
	}
	formatter.Printf("Updated catalog: %s (%d items)\n", summary.Catalog, summary.Count)
	if summary.ImagePath != "" {
		formatter.Printf("Copied image to: %s\n", summary.ImagePath)
	}
	formatter.Printf("✓ Added item %q (%s, id %d)\n", added.Name, added.Shortname, added.ID)
	return nil
}

// collect prompts for every value not given as a flag. When id, shortname
// and name all come from flags nothing is asked.
func (o *AddOptions) collect(cmd *cobra.Command, p *prompter) error {
	flags := cmd.Flags()
	interactive := !flags.Changed("id") || !flags.Changed("shortname") || !flags.Changed("name")
	if !interactive {
		return nil
	}

	questions := []struct {
		flag  string
		label string
		dst   *string
	}{
		{"id", "Item ID (number): ", &o.ID},
		{"shortname", `Item shortname (e.g., "weapon.ak"): `, &o.Shortname},
		{"name", `Item display name (e.g., "AK47"): `, &o.Name},
		{"description", "Item description (optional): ", &o.Description},
		{"image", "Path to item image file (256x256 PNG recommended): ", &o.Image},
	}
	for _, q := range questions {
		if flags.Changed(q.flag) {
			continue
		}
		answer, err := p.Ask(q.label)
		if err != nil {
			return err
		}
		*q.dst = answer
	}
	return nil
}

func addError(formatter *OutputFormatter, err error) error {
	var idErr *catalog.DuplicateIDError
	var nameErr *catalog.DuplicateShortnameError
	switch {
	case errors.As(err, &idErr):
		return checkFailure(formatter, ErrCodeDuplicateID, err.Error(), idErr.Existing)
	case errors.As(err, &nameErr):
		return checkFailure(formatter, ErrCodeDuplicateShortname, err.Error(), nameErr.Existing)
	case errors.Is(err, catalog.ErrEmptyShortname), errors.Is(err, catalog.ErrEmptyName),
		errors.Is(err, catalog.ErrZeroID), errors.Is(err, catalog.ErrInvalidShortname):
		return commandError(formatter, ErrCodeInvalidInput, err.Error(), nil)
	default:
		return commandError(formatter, ErrCodeGeneric, err.Error(), nil)
	}
}

// stagedImage is an item image copied into the image directory under a
// temporary name.
type stagedImage struct {
	tmp    string
	dst    string
	logger *zap.SugaredLogger
}

// stageImage copies image to a hidden temporary file in dir, creating dir.
func stageImage(image, dir string, item catalog.Item, logger *zap.SugaredLogger) (*stagedImage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(dir, "."+item.ImageFile()+".*.tmp")
	if err != nil {
		return nil, err
	}
	name := tmp.Name()
	tmp.Close()

	if err := assets.CopyFile(image, name); err != nil {
		os.Remove(name)
		return nil, err
	}
	if err := os.Chmod(name, 0644); err != nil {
		os.Remove(name)
		return nil, err
	}
	return &stagedImage{tmp: name, dst: filepath.Join(dir, item.ImageFile()), logger: logger}, nil
}

// commit moves the staged image to <dir>/<shortname>.png.
func (s *stagedImage) commit() error {
	return os.Rename(s.tmp, s.dst)
}

// discard removes the temporary file. It is a no-op after commit.
func (s *stagedImage) discard() {
	if err := os.Remove(s.tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warnw("Could not remove staged image", "path", s.tmp, "error", err)
	}
}

// restoreCatalog puts the backup taken by catalog.Write back in place.
func restoreCatalog(path string, written *catalog.WriteResult) error {
	if written.BackupPath == "" {
		return errors.New("no backup to restore")
	}
	return os.Rename(written.BackupPath, path)
}
