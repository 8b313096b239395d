package catalog

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale is the collation locale used when none is configured.
const DefaultLocale = "en"

// Order compares shortnames with locale-aware collation.
//
// An Order wraps a collate.Collator and is not safe for concurrent use.
type Order struct {
	tag language.Tag
	col *collate.Collator
}

// NewOrder creates an Order for the given BCP 47 locale tag.
func NewOrder(locale string) (*Order, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return &Order{tag: tag, col: collate.New(tag)}, nil
}

// DefaultOrder returns an Order for DefaultLocale.
func DefaultOrder() *Order {
	return &Order{tag: language.English, col: collate.New(language.English)}
}

// Locale returns the locale tag of the order.
func (o *Order) Locale() string {
	return o.tag.String()
}

// Compare returns -1, 0 or 1 depending on whether a sorts before, equal to
// or after b.
func (o *Order) Compare(a, b string) int {
	return o.col.CompareString(a, b)
}

// Sort sorts items in place by shortname. Items that collate equal keep
// their relative order.
func (o *Order) Sort(items Catalog) {
	sort.SliceStable(items, func(i, j int) bool {
		return o.Compare(items[i].Shortname, items[j].Shortname) < 0
	})
}

// IsSorted reports whether names are in ascending order.
func (o *Order) IsSorted(names []string) bool {
	for i := 1; i < len(names); i++ {
		if o.Compare(names[i-1], names[i]) > 0 {
			return false
		}
	}
	return true
}
