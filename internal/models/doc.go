// Package models defines domain entities and the persistence interface for the plview playlist browser.
//
// The package contains:
//
//   - [Track] : a single media entry (date, artist, title, url, play count)
//   - [Playlist] : a uniquely titled collection of tracks
//   - [ReadOptions] : search and sort parameters for reading a playlist
//   - [SortField] / [SortDirection] : the closed set of sort keys accepted from callers
//
// The [Store] interface is implemented by every storage backend (see internal/repositories).
// Expected outcomes such as "not found", "duplicate" or "refused" are reported as boolean
// or empty results; a non-nil error always means the underlying storage failed.
package models
