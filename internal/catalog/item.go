package catalog

// Item is one catalog record.
type Item struct {
	ID          int64  `json:"id"`
	Shortname   string `json:"shortname"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ImageFile returns the image filename expected for the item.
func (i Item) ImageFile() string {
	return i.Shortname + ImageExt
}

// ImageExt is the extension of item images in the image directory.
const ImageExt = ".png"

// Catalog is an ordered sequence of items.
type Catalog []Item

// FindByID returns the first item with the given id.
func (c Catalog) FindByID(id int64) (Item, bool) {
	for _, item := range c {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// FindByShortname returns the first item with the given shortname.
func (c Catalog) FindByShortname(shortname string) (Item, bool) {
	for _, item := range c {
		if item.Shortname == shortname {
			return item, true
		}
	}
	return Item{}, false
}

// Shortnames returns the shortnames in catalog order.
func (c Catalog) Shortnames() []string {
	names := make([]string, len(c))
	for i, item := range c {
		names[i] = item.Shortname
	}
	return names
}

// Clone returns a copy that can be reordered without touching c.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	copy(out, c)
	return out
}
