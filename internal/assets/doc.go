// Package assets locates the game client's item bundle directory and keeps
// the application's item image directory in sync with it.
//
// Image sync is incremental: a file is copied only when the destination is
// missing or older than the source, and nothing is ever deleted from the
// destination. Copy failures are collected per file.
package assets
