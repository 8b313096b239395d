// Package store exports an item catalog into a SQLite database so that the
// application runtime can query it without parsing the JSON file.
//
// Tables:
//   - items: one row per record, keyed by id, with a UNIQUE shortname and
//     the record's position in catalog order
//   - exports: one row per export run, keyed by a random export id
//
// The catalog view lists items in catalog order. ReplaceItems rewrites the
// items table inside one transaction; a catalog that breaks id or shortname
// uniqueness is rejected by the table constraints and leaves the previous
// export in place.
//
// Connections run in WAL mode with synchronous=NORMAL and a five second busy
// timeout.
package store
