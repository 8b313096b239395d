package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Indent is the indentation of the canonical catalog file.
const Indent = "    "

// Marshal encodes items as the canonical catalog document: a JSON array
// indented with four spaces, without HTML escaping, ending in a newline.
// A nil catalog encodes as an empty array.
func Marshal(items Catalog) ([]byte, error) {
	if items == nil {
		items = Catalog{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(items); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a catalog document into typed items.
// Use the validator package to inspect documents that may not conform.
func Unmarshal(data []byte) (Catalog, error) {
	var items Catalog
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if items == nil {
		items = Catalog{}
	}
	return items, nil
}

// Load reads and decodes the catalog at path. A missing file yields an
// error wrapping fs.ErrNotExist.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	items, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}
