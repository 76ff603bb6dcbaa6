package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plview/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	RandomView
)

// sortCycle is the order the sort key steps through.
var sortCycle = []models.SortField{
	models.SortNone,
	models.SortDate,
	models.SortArtist,
	models.SortTitle,
	models.SortPlayCount,
	models.SortRandom,
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	store        models.Store
	view         ViewState
	previous     ViewState
	width        int
	height       int
	playlistList list.Model
	trackList    list.Model
	current      string
	sort         models.SortField
	direction    models.SortDirection
	random       *models.Track
	randomLoaded bool
	status       string
	fatal        error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model reading from store.
func NewModel(ctx context.Context, store models.Store) *Model {
	playlists := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	playlists.Title = "Playlists"
	tracks := list.New(nil, list.NewDefaultDelegate(), 0, 0)

	return &Model{
		ctx:          ctx,
		store:        store,
		view:         PlaylistListView,
		playlistList: playlists,
		trackList:    tracks,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init initializes the TUI by fetching playlists from the store.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && (msg.String() == "ctrl+c" || !m.filtering()) {
			return m, tea.Quit
		}
		if m.fatal != nil {
			return m, nil
		}
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case RandomView:
			return m.handleRandomKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.fatal != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.fatal))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case RandomView:
		return m.renderRandom()
	default:
		return ""
	}
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		if msg.err != nil {
			m.fatal = msg.err
			return m, nil
		}
		names, _ := msg.data.([]string)
		items := make([]list.Item, len(names))
		for i, name := range names {
			items[i] = playlistItem(name)
		}
		return m, m.playlistList.SetItems(items)

	case MsgTracksFetched:
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("failed to load tracks: %v", msg.err))
			return m, nil
		}
		result, _ := msg.data.(tracksResult)
		items := make([]list.Item, len(result.tracks))
		for i, track := range result.tracks {
			items[i] = trackItem{track: track}
		}
		m.current = result.playlist
		m.trackList.Title = fmt.Sprintf("%s (%s)", result.playlist, m.orderLabel())
		m.view = TrackListView
		return m, m.trackList.SetItems(items)

	case MsgRandomFetched:
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("failed to pick a track: %v", msg.err))
			return m, nil
		}
		m.random, _ = msg.data.(*models.Track)
		m.randomLoaded = true
		return m, nil

	case MsgPlayRecorded:
		result, _ := msg.data.(playResult)
		switch {
		case msg.err != nil:
			m.status = styles.err.Render(fmt.Sprintf("failed to record play: %v", msg.err))
		case !result.found:
			m.status = styles.warn.Render(fmt.Sprintf("%q is no longer in the store", result.track.Title))
		default:
			m.bumpPlayCount(result.track.ID)
			m.status = styles.ok.Render(fmt.Sprintf("played %s - %s", result.track.Artist, result.track.Title))
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.filtering() {
		switch {
		case key.Matches(msg, m.keys.enter):
			if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
				m.sort, m.direction = models.SortNone, models.Ascending
				m.status = ""
				return m, m.fetchTracks(string(pl))
			}
			return m, nil
		case key.Matches(msg, m.keys.random):
			return m, m.showRandom()
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.filtering() {
		switch {
		case key.Matches(msg, m.keys.back):
			m.view = PlaylistListView
			m.status = ""
			return m, nil
		case key.Matches(msg, m.keys.sort):
			m.sort = nextSort(m.sort)
			return m, m.fetchTracks(m.current)
		case key.Matches(msg, m.keys.direction):
			if m.direction == models.Ascending {
				m.direction = models.Descending
			} else {
				m.direction = models.Ascending
			}
			return m, m.fetchTracks(m.current)
		case key.Matches(msg, m.keys.play):
			if item, ok := m.trackList.SelectedItem().(trackItem); ok {
				return m, m.recordPlay(item.track)
			}
			return m, nil
		case key.Matches(msg, m.keys.random):
			return m, m.showRandom()
		}
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleRandomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = m.previous
		m.status = ""
	case key.Matches(msg, m.keys.random):
		return m, m.fetchRandom()
	case key.Matches(msg, m.keys.play):
		if m.random != nil {
			return m, m.recordPlay(*m.random)
		}
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

// filtering reports whether the active list is capturing keystrokes for its filter.
func (m *Model) filtering() bool {
	switch m.view {
	case PlaylistListView:
		return m.playlistList.FilterState() == list.Filtering
	case TrackListView:
		return m.trackList.FilterState() == list.Filtering
	}
	return false
}

// bumpPlayCount mirrors a recorded play in the visible track list and random view.
func (m *Model) bumpPlayCount(id int64) {
	for i, item := range m.trackList.Items() {
		if ti, ok := item.(trackItem); ok && ti.track.ID == id {
			ti.track.PlayCount++
			m.trackList.SetItem(i, ti)
		}
	}
	if m.random != nil && m.random.ID == id {
		m.random.PlayCount++
	}
}

func (m *Model) orderLabel() string {
	switch m.sort {
	case models.SortNone:
		return "playlist order"
	case models.SortRandom:
		return "shuffled"
	default:
		return fmt.Sprintf("by %s %s", m.sort, m.direction)
	}
}

func nextSort(current models.SortField) models.SortField {
	for i, field := range sortCycle {
		if field == current {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return models.SortNone
}

func (m *Model) showRandom() tea.Cmd {
	m.previous = m.view
	m.view = RandomView
	m.randomLoaded = false
	m.status = ""
	return m.fetchRandom()
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.store.ListPlaylists(m.ctx)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) fetchTracks(playlist string) tea.Cmd {
	opts := models.ReadOptions{Sort: m.sort, Direction: m.direction}
	return func() tea.Msg {
		tracks, err := m.store.ReadPlaylist(m.ctx, playlist, opts)
		return tracksFetchedMsg(playlist, tracks, err)
	}
}

func (m *Model) fetchRandom() tea.Cmd {
	return func() tea.Msg {
		track, err := m.store.RandomTrack(m.ctx)
		return randomFetchedMsg(track, err)
	}
}

func (m *Model) recordPlay(track models.Track) tea.Cmd {
	return func() tea.Msg {
		ok, err := m.store.IncrementPlayCount(m.ctx, track.ID)
		return playRecordedMsg(track, ok, err)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.random, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n%s", m.playlistList.View(), m.status, helpView)
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.play, m.keys.sort, m.keys.direction, m.keys.random, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n%s", m.trackList.View(), m.status, helpView)
}

func (m *Model) renderRandom() string {
	title := styles.title.Render("Random Track")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.random, m.keys.play, m.keys.back, m.keys.quit})

	var body string
	switch {
	case !m.randomLoaded:
		body = styles.help.Render("Picking a track...")
	case m.random == nil:
		body = styles.warn.Render("No tracks available.")
	default:
		t := m.random
		body = fmt.Sprintf("%s\n%s\n%s\n%d plays", styles.ok.Render(t.Title), t.Artist, styles.help.Render(t.Date), t.PlayCount)
		if t.URL != "" {
			body += "\n" + styles.help.Render(t.URL)
		}
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n%s", title, body, m.status, helpView)
}
