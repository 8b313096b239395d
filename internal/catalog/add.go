package catalog

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrEmptyShortname is returned when a new item has no shortname.
	ErrEmptyShortname = errors.New("shortname is required")

	// ErrEmptyName is returned when a new item has no display name.
	ErrEmptyName = errors.New("display name is required")

	// ErrZeroID is returned when a new item has id 0, which is treated as
	// no id at all.
	ErrZeroID = errors.New("item id must be non-zero")

	// ErrInvalidShortname is returned when a shortname cannot name a file
	// in the flat image directory.
	ErrInvalidShortname = errors.New("shortname must not contain path separators or \"..\"")
)

// DuplicateIDError is returned by Add when the id is already taken.
type DuplicateIDError struct {
	ID       int64
	Existing Item
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("item with id %d already exists: %s (%s)", e.ID, e.Existing.Name, e.Existing.Shortname)
}

// DuplicateShortnameError is returned by Add when the shortname is already taken.
type DuplicateShortnameError struct {
	Shortname string
	Existing  Item
}

func (e *DuplicateShortnameError) Error() string {
	return fmt.Sprintf("item with shortname %q already exists: %s", e.Shortname, e.Existing.Name)
}

// IsDuplicate reports whether err is a duplicate id or shortname rejection.
func IsDuplicate(err error) bool {
	var idErr *DuplicateIDError
	var nameErr *DuplicateShortnameError
	return errors.As(err, &idErr) || errors.As(err, &nameErr)
}

// Normalize trims surrounding whitespace from the text fields of item and
// puts them in Unicode NFC form.
func Normalize(item Item) Item {
	item.Shortname = norm.NFC.String(strings.TrimSpace(item.Shortname))
	item.Name = norm.NFC.String(strings.TrimSpace(item.Name))
	item.Description = norm.NFC.String(strings.TrimSpace(item.Description))
	return item
}

// ValidShortname reports whether s can be used as the stem of an image file
// directly inside the image directory.
func ValidShortname(s string) bool {
	return !strings.ContainsAny(s, `/\`) && !strings.Contains(s, "..")
}

// Check normalizes item and verifies it can be inserted into c.
// Nothing is modified; the normalized item is returned.
func (c Catalog) Check(item Item) (Item, error) {
	item = Normalize(item)

	if item.ID == 0 {
		return Item{}, ErrZeroID
	}
	if item.Shortname == "" {
		return Item{}, ErrEmptyShortname
	}
	if !ValidShortname(item.Shortname) {
		return Item{}, fmt.Errorf("%w: %q", ErrInvalidShortname, item.Shortname)
	}
	if item.Name == "" {
		return Item{}, ErrEmptyName
	}
	if existing, ok := c.FindByID(item.ID); ok {
		return Item{}, &DuplicateIDError{ID: item.ID, Existing: existing}
	}
	if existing, ok := c.FindByShortname(item.Shortname); ok {
		return Item{}, &DuplicateShortnameError{Shortname: item.Shortname, Existing: existing}
	}
	return item, nil
}

// Add returns a new catalog with item inserted in order. c is not modified.
// Returns *DuplicateIDError or *DuplicateShortnameError when either key is
// already present.
func (c Catalog) Add(item Item, order *Order) (Catalog, Item, error) {
	item, err := c.Check(item)
	if err != nil {
		return nil, Item{}, err
	}

	out := make(Catalog, 0, len(c)+1)
	out = append(out, c...)
	out = append(out, item)
	order.Sort(out)
	return out, item, nil
}
