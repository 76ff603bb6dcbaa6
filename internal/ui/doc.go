// Package ui implements an interactive terminal playlist browser using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [PlaylistListView] : Browse playlists in the store
//  2. [TrackListView] : Browse a playlist's tracks, cycle the sort order, and record plays
//  3. [RandomView] : Show a track picked at random from the whole collection
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving store results via the Msg union type.
// Every store call runs inside a [tea.Cmd], so the UI never blocks on I/O.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, s, d, p, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
