package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownSortField     = errors.New("unknown sort field")
	ErrUnknownSortDirection = errors.New("unknown sort direction")
	ErrInvalidTrack         = errors.New("invalid track")
)

// Track is a single playable media entry.
type Track struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Artist    string `json:"artist"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	PlayCount int    `json:"play_count"`
}

// Validate checks that the fields identifying a track are present.
func (t Track) Validate() error {
	if strings.TrimSpace(t.Artist) == "" {
		return fmt.Errorf("%w: artist is required", ErrInvalidTrack)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTrack)
	}
	return nil
}

// Playlist is a named collection of tracks. Titles are unique.
type Playlist struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// SortField enumerates the keys a playlist can be ordered by.
type SortField int

const (
	SortNone SortField = iota
	SortDate
	SortArtist
	SortTitle
	SortPlayCount
	SortRandom
)

var sortFieldNames = map[SortField]string{
	SortNone:      "",
	SortDate:      "date",
	SortArtist:    "artist",
	SortTitle:     "title",
	SortPlayCount: "play_count",
	SortRandom:    "random",
}

// String returns the wire name of the sort field.
func (f SortField) String() string {
	return sortFieldNames[f]
}

// ParseSortField maps a wire name onto a [SortField].
//
// Only the names in the allow-list are accepted; the empty string means [SortNone].
func ParseSortField(s string) (SortField, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for field, name := range sortFieldNames {
		if name == s {
			return field, nil
		}
	}
	return SortNone, fmt.Errorf("%w: %q", ErrUnknownSortField, s)
}

// SortDirection is either ascending or descending.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

func (d SortDirection) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SQL returns the keyword used in an ORDER BY clause.
func (d SortDirection) SQL() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// ParseSortDirection accepts "asc" or "desc" in any case. Empty means [Ascending].
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("%w: %q", ErrUnknownSortDirection, s)
	}
}

// ReadOptions narrows and orders the tracks returned by [Store.ReadPlaylist].
type ReadOptions struct {
	Search    string        // Substring matched against artist or title, case-insensitive
	Sort      SortField     // Ordering key, [SortNone] keeps the scan order
	Direction SortDirection // Ignored for [SortNone] and [SortRandom]
}

// Store defines the persistence operations shared by all storage backends.
//
// Boolean results report expected outcomes (created, added, moved, found).
// A non-nil error means the storage layer failed.
type Store interface {
	// ListPlaylists returns playlist titles in a stable, backend-defined order.
	ListPlaylists(ctx context.Context) ([]string, error)
	// ReadPlaylist returns the tracks of a playlist, empty when it does not exist.
	ReadPlaylist(ctx context.Context, name string, opts ReadOptions) ([]Track, error)
	// RandomTrack picks one track from the whole population, nil when there are none.
	RandomTrack(ctx context.Context) (*Track, error)
	// CreatePlaylist returns false when the title is taken.
	CreatePlaylist(ctx context.Context, title string) (bool, error)
	// RemovePlaylist returns false when the playlist is missing or not empty.
	RemovePlaylist(ctx context.Context, title string) (bool, error)
	// AddTrack returns false when the membership already exists or the playlist is missing.
	AddTrack(ctx context.Context, playlist string, track Track) (bool, error)
	// RemoveTrack is idempotent.
	RemoveTrack(ctx context.Context, trackID int64, playlist string) error
	// MoveTrack returns false without side effects when the move cannot happen.
	MoveTrack(ctx context.Context, trackID int64, from, to string) (bool, error)
	// IncrementPlayCount returns false when the track does not exist.
	IncrementPlayCount(ctx context.Context, trackID int64) (bool, error)
	Close() error
}
