package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plview/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
	err  error
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgTracksFetched
	MsgRandomFetched
	MsgPlayRecorded
)

type tracksResult struct {
	playlist string
	tracks   []models.Track
}

type playResult struct {
	track models.Track
	found bool
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []string, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlists, err: err}
}

// tracksFetchedMsg is the constructor for [MsgTracksFetched]
func tracksFetchedMsg(playlist string, tracks []models.Track, err error) Msg {
	return Msg{kind: MsgTracksFetched, data: tracksResult{playlist: playlist, tracks: tracks}, err: err}
}

// randomFetchedMsg is the constructor for [MsgRandomFetched]. A nil track means the store is empty.
func randomFetchedMsg(track *models.Track, err error) Msg {
	return Msg{kind: MsgRandomFetched, data: track, err: err}
}

// playRecordedMsg is the constructor for [MsgPlayRecorded]
func playRecordedMsg(track models.Track, found bool, err error) Msg {
	return Msg{kind: MsgPlayRecorded, data: playResult{track: track, found: found}, err: err}
}
