// Package repositories implements the [models.Store] backends.
//
// Key Implementations:
//   - [SQLiteStore] : relational storage over tracks, playlists, and playlist_tracks tables
//   - [FileStore] : a folder of headerless CSV files, one per playlist
//
// [Open] picks a backend from [shared.StoreConfig] so callers never depend on a concrete store.
package repositories
