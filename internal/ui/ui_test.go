package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plview/internal/models"
	th "github.com/desertthunder/plview/internal/testing"
)

// run executes cmd and feeds its message back into the model, following one level of batching.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case Msg:
		_, next := m.Update(msg)
		run(t, m, next)
	case tea.BatchMsg:
		for _, c := range msg {
			run(t, m, c)
		}
	}
}

func press(t *testing.T, m *Model, k string) tea.Cmd {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func newTestModel(t *testing.T, store models.Store) *Model {
	t.Helper()
	m := NewModel(context.Background(), store)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	run(t, m, m.Init())
	return m
}

func seededStore() *th.MockStore {
	store := th.NewMockStore()
	store.Seed("Chill",
		models.Track{Date: "2024-01-02", Artist: "Burial", Title: "Archangel"},
		models.Track{Date: "2024-01-01", Artist: "Aphex Twin", Title: "Xtal"},
	)
	store.Seed("Focus")
	return store
}

func TestModel(t *testing.T) {
	t.Run("lists playlists", func(t *testing.T) {
		m := newTestModel(t, seededStore())

		if got := len(m.playlistList.Items()); got != 2 {
			t.Fatalf("expected 2 playlists, got %d", got)
		}
		if view := m.View(); !strings.Contains(view, "Chill") || !strings.Contains(view, "Focus") {
			t.Errorf("playlist view missing titles: %s", view)
		}
	})

	t.Run("opens a playlist", func(t *testing.T) {
		m := newTestModel(t, seededStore())
		run(t, m, press(t, m, "enter"))

		if m.view != TrackListView || m.current != "Chill" {
			t.Fatalf("expected track view for Chill, got view %d playlist %q", m.view, m.current)
		}
		if got := len(m.trackList.Items()); got != 2 {
			t.Errorf("expected 2 tracks, got %d", got)
		}

		press(t, m, "esc")
		if m.view != PlaylistListView {
			t.Errorf("esc should return to the playlist list")
		}
	})

	t.Run("cycles sort order", func(t *testing.T) {
		m := newTestModel(t, seededStore())
		run(t, m, press(t, m, "enter"))

		run(t, m, press(t, m, "s"))
		if m.sort != models.SortDate {
			t.Fatalf("expected date sort, got %v", m.sort)
		}
		first := m.trackList.Items()[0].(trackItem)
		if first.track.Title != "Xtal" {
			t.Errorf("expected Xtal first by date, got %s", first.track.Title)
		}

		run(t, m, press(t, m, "d"))
		first = m.trackList.Items()[0].(trackItem)
		if m.direction != models.Descending || first.track.Title != "Archangel" {
			t.Errorf("expected Archangel first by date desc, got %s", first.track.Title)
		}
		if !strings.Contains(m.trackList.Title, "by date desc") {
			t.Errorf("title should describe the order, got %q", m.trackList.Title)
		}

		for range len(sortCycle) - 1 {
			run(t, m, press(t, m, "s"))
		}
		if m.sort != models.SortNone {
			t.Errorf("sort should wrap around, got %v", m.sort)
		}
	})

	t.Run("records a play", func(t *testing.T) {
		store := seededStore()
		m := newTestModel(t, store)
		run(t, m, press(t, m, "enter"))
		run(t, m, press(t, m, "p"))

		selected := m.trackList.SelectedItem().(trackItem)
		if selected.track.PlayCount != 1 {
			t.Errorf("expected visible play count 1, got %d", selected.track.PlayCount)
		}

		tracks, _ := store.ReadPlaylist(context.Background(), "Chill", models.ReadOptions{})
		if tracks[0].PlayCount != 1 {
			t.Errorf("expected stored play count 1, got %d", tracks[0].PlayCount)
		}
		if !strings.Contains(m.View(), "played Burial - Archangel") {
			t.Errorf("status missing from view: %s", m.View())
		}
	})

	t.Run("random track", func(t *testing.T) {
		m := newTestModel(t, seededStore())
		run(t, m, press(t, m, "r"))

		if m.view != RandomView || m.random == nil {
			t.Fatalf("expected a random track, got view %d track %v", m.view, m.random)
		}
		if !strings.Contains(m.View(), m.random.Title) {
			t.Errorf("random view missing title: %s", m.View())
		}

		run(t, m, press(t, m, "p"))
		if m.random.PlayCount != 1 {
			t.Errorf("expected play count 1, got %d", m.random.PlayCount)
		}

		press(t, m, "esc")
		if m.view != PlaylistListView {
			t.Errorf("esc should return to the previous view, got %d", m.view)
		}
	})

	t.Run("random track on empty store", func(t *testing.T) {
		m := newTestModel(t, th.NewMockStore())
		run(t, m, press(t, m, "r"))

		if !strings.Contains(m.View(), "No tracks available.") {
			t.Errorf("expected empty message, got %s", m.View())
		}
	})

	t.Run("store failure on start", func(t *testing.T) {
		store := th.NewMockStore()
		store.Err = errors.New("database is locked")
		m := newTestModel(t, store)

		if view := m.View(); !strings.Contains(view, "database is locked") {
			t.Errorf("expected error view, got %s", view)
		}

		if cmd := press(t, m, "q"); cmd == nil {
			t.Fatal("expected quit command")
		} else if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("q should quit")
		}
	})
}

func TestNextSort(t *testing.T) {
	if got := nextSort(models.SortRandom); got != models.SortNone {
		t.Errorf("nextSort(random) = %v", got)
	}
	if got := nextSort(models.SortTitle); got != models.SortPlayCount {
		t.Errorf("nextSort(title) = %v", got)
	}
}
