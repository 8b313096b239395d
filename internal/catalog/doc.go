// Package catalog defines the canonical item catalog: the Item record, the
// locale-aware order it is stored in, and the read/write path for the
// on-disk JSON document.
//
// The catalog file is a JSON array of items, indented with four spaces and
// sorted ascending by shortname. Writes go through Write, which copies the
// previous file to a backup path and then replaces the catalog atomically
// (temp file + rename).
//
// Key invariants:
//   - one record per id and per shortname (enforced by Add, checked by the
//     validator package for everything else)
//   - records are stored in Order.Sort order
//   - description is always present, possibly empty
package catalog
