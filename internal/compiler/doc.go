// Package compiler builds the item catalog from a directory of raw per-item
// metadata files shipped with the game client.
//
// Each raw file is extracted as JSON and checked against a CUE schema derived
// from the configured field names before it is mapped into a catalog.Item.
// Files are isolated from each other: a file that cannot be parsed is counted
// as errored, a file that parses but lacks a required field is counted as
// skipped, and neither stops the run.
//
// The compiler does not deduplicate across files. Colliding ids or
// shortnames are reported in Result.Collisions and left for the validator.
package compiler
