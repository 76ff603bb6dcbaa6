package models

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"
)

// FilterTracks returns the tracks whose artist or title contains query, ignoring ASCII case.
//
// Only A-Z fold, matching SQLite's LIKE.
// An empty query returns the input unchanged.
func FilterTracks(tracks []Track, query string) []Track {
	if query == "" {
		return tracks
	}
	needle := foldASCII(query)
	filtered := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if strings.Contains(foldASCII(t.Artist), needle) || strings.Contains(foldASCII(t.Title), needle) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func foldASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// SortTracks orders tracks in place by field and direction.
//
// [SortRandom] shuffles with a fresh, unseeded source on every call.
// [SortNone] leaves the slice as it is.
func SortTracks(tracks []Track, field SortField, dir SortDirection) {
	switch field {
	case SortNone:
		return
	case SortRandom:
		rand.Shuffle(len(tracks), func(i, j int) { tracks[i], tracks[j] = tracks[j], tracks[i] })
		return
	}

	slices.SortStableFunc(tracks, func(a, b Track) int {
		var c int
		switch field {
		case SortPlayCount:
			c = cmp.Compare(a.PlayCount, b.PlayCount)
		case SortDate:
			c = strings.Compare(a.Date, b.Date)
		case SortArtist:
			c = strings.Compare(a.Artist, b.Artist)
		case SortTitle:
			c = strings.Compare(a.Title, b.Title)
		}
		if dir == Descending {
			return -c
		}
		return c
	})
}
