package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/plview/internal/models"
)

var (
	_ list.Item = playlistItem("")
	_ list.Item = trackItem{}
)

// playlistItem is a playlist title implementing [list.Item].
type playlistItem string

func (i playlistItem) FilterValue() string { return string(i) }
func (i playlistItem) Title() string       { return string(i) }
func (i playlistItem) Description() string { return "" }

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Artist + " " + i.track.Title }
func (i trackItem) Title() string       { return i.track.Title }
func (i trackItem) Description() string {
	desc := fmt.Sprintf("%s • %d plays", i.track.Artist, i.track.PlayCount)
	if i.track.Date != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Date)
	}
	return desc
}
