package repositories

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/plview/internal/models"
	"github.com/desertthunder/plview/internal/shared"
)

func newFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return store, dir
}

func writePlaylist(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".csv"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write playlist: %v", err)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("reads headerless four column files", func(t *testing.T) {
		store, dir := newFileStore(t)
		writePlaylist(t, dir, "chill",
			"2024-01-01,Artist,Song,https://www.youtube.com/watch?v=abcdefghijk\n"+
				"2024-01-02,\"Crosby, Stills & Nash\",Helplessly Hoping,https://youtu.be/ABCDEFGHIJK\n")

		tracks := mustRead(t, store, "chill", models.ReadOptions{})
		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}
		if tracks[1].Artist != "Crosby, Stills & Nash" {
			t.Errorf("quoted field not parsed: %q", tracks[1].Artist)
		}
		if tracks[0].PlayCount != 0 {
			t.Errorf("missing play count should default to 0, got %d", tracks[0].PlayCount)
		}
		if tracks[0].ID != TrackID("Artist", "Song") {
			t.Errorf("unexpected id %d", tracks[0].ID)
		}
	})

	t.Run("duplicate rows collapse to one membership", func(t *testing.T) {
		store, dir := newFileStore(t)
		writePlaylist(t, dir, "dupes", "d,A,T,u\nd,A,T,u\n")

		if tracks := mustRead(t, store, "dupes", models.ReadOptions{}); len(tracks) != 1 {
			t.Errorf("expected 1 track, got %d", len(tracks))
		}
	})

	t.Run("invalid play count is a storage fault", func(t *testing.T) {
		store, dir := newFileStore(t)
		writePlaylist(t, dir, "broken", "d,A,T,u\nd,A,T,u\nd,B,T,u,lots\n")

		_, err := store.ReadPlaylist(ctx, "broken", models.ReadOptions{})
		if err == nil || !strings.Contains(err.Error(), "line 3:") {
			t.Errorf("expected parse error on line 3, got %v", err)
		}
	})

	t.Run("writes play counts as a fifth column", func(t *testing.T) {
		store, dir := newFileStore(t)
		writePlaylist(t, dir, "chill", "2024-01-01,Artist,Song,https://youtu.be/abcdefghijk\n")

		if ok, err := store.IncrementPlayCount(ctx, TrackID("Artist", "Song")); err != nil || !ok {
			t.Fatalf("IncrementPlayCount() = %v, %v", ok, err)
		}

		data, err := os.ReadFile(filepath.Join(dir, "chill.csv"))
		if err != nil {
			t.Fatalf("failed to read playlist: %v", err)
		}
		if got := strings.TrimSpace(string(data)); got != "2024-01-01,Artist,Song,https://youtu.be/abcdefghijk,1" {
			t.Errorf("unexpected file contents %q", got)
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 {
			t.Errorf("temporary files left behind: %v", entries)
		}
	})

	t.Run("ignores non playlist files", func(t *testing.T) {
		store, dir := newFileStore(t)
		writePlaylist(t, dir, "real", "")
		os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644)
		os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755)

		names, err := store.ListPlaylists(ctx)
		if err != nil {
			t.Fatalf("ListPlaylists() error = %v", err)
		}
		if len(names) != 1 || names[0] != "real" {
			t.Errorf("expected [real], got %v", names)
		}
	})

	t.Run("rejects unsafe names", func(t *testing.T) {
		store, dir := newFileStore(t)
		writePlaylist(t, filepath.Dir(dir), "outside", "d,A,T,u\n")

		for _, name := range []string{"../outside", `..\outside`, "a/b", "", ".hidden"} {
			if _, err := store.CreatePlaylist(ctx, name); !errors.Is(err, shared.ErrInvalidName) {
				t.Errorf("CreatePlaylist(%q): expected ErrInvalidName, got %v", name, err)
			}
			if tracks := mustRead(t, store, name, models.ReadOptions{}); len(tracks) != 0 {
				t.Errorf("ReadPlaylist(%q) escaped the folder: %v", name, tracks)
			}
		}
	})

	t.Run("new folder is created", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "lists")
		if _, err := NewFileStore(dir, nil); err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected folder to exist: %v", err)
		}
	})

	t.Run("empty folder config", func(t *testing.T) {
		if _, err := NewFileStore("", nil); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestTrackID(t *testing.T) {
	if TrackID("a", "b") != TrackID("a", "b") {
		t.Error("TrackID should be deterministic")
	}
	if TrackID("ab", "c") == TrackID("a", "bc") {
		t.Error("field boundaries should affect the id")
	}
	if TrackID("a", "b") < 0 {
		t.Error("TrackID should be non-negative")
	}
}

func TestValidPlaylistName(t *testing.T) {
	tc := []struct {
		name string
		want bool
	}{
		{name: "Chill", want: true},
		{name: "Late Night 2024", want: true},
		{name: "", want: false},
		{name: "   ", want: false},
		{name: "..", want: false},
		{name: "a/b", want: false},
		{name: `a\b`, want: false},
		{name: ".env", want: false},
		{name: "tab\tname", want: false},
		{name: "line\nbreak", want: false},
		{name: "nul\x00", want: false},
		{name: "Café", want: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidPlaylistName(tt.name); got != tt.want {
				t.Errorf("ValidPlaylistName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
