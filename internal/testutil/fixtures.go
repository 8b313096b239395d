// Package testutil holds fixture helpers shared by package tests: raw item
// files, catalog documents, image files and a deterministic clock.
//
// The helpers deliberately take plain maps instead of catalog types so any
// internal package can use them without import cycles.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// RawItem builds a raw metadata record using the game client's field names.
func RawItem(id int64, shortname, name, description string) map[string]any {
	item := map[string]any{
		"itemid":    id,
		"shortname": shortname,
		"Name":      name,
		"ItemType":  "Weapon",
		"Stackable": 1,
	}
	if description != "" {
		item["Description"] = description
	}
	return item
}

// WriteFile writes content to dir/name, creating parent directories.
// Returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// WriteJSON marshals v with four-space indentation into dir/name.
func WriteJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		t.Fatalf("marshaling %s: %v", name, err)
	}
	return WriteFile(t, dir, name, string(data))
}

// WriteImages creates a placeholder <shortname>.png in dir for each shortname.
func WriteImages(t *testing.T, dir string, shortnames ...string) {
	t.Helper()
	for _, s := range shortnames {
		WriteFile(t, dir, s+".png", "\x89PNG "+s)
	}
}

// SetModTime sets both access and modification time of path.
func SetModTime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

// ReadFile returns the content of path as a string.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
