package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/plview/internal/formatter"
	"github.com/desertthunder/plview/internal/models"
	"github.com/desertthunder/plview/internal/shared"
	th "github.com/desertthunder/plview/internal/testing"
)

// flakyStore fails reads of one playlist.
type flakyStore struct {
	*th.MockStore
	fail string
}

func (s flakyStore) ReadPlaylist(ctx context.Context, name string, opts models.ReadOptions) ([]models.Track, error) {
	if name == s.fail {
		return nil, errors.New("disk I/O error")
	}
	return s.MockStore.ReadPlaylist(ctx, name, opts)
}

func seededStore(playlists int) *th.MockStore {
	store := th.NewMockStore()
	for i := range playlists {
		store.Seed(fmt.Sprintf("Playlist %d", i+1),
			models.Track{Date: "2024-01-01", Artist: "Artist", Title: fmt.Sprintf("Song %d", i+1)},
		)
	}
	return store
}

func TestBulkExport(t *testing.T) {
	tests := []struct {
		name      string
		format    formatter.Format
		playlists int
		workers   int
		wantFile  string
	}{
		{name: "single playlist csv export", format: formatter.FormatCSV, playlists: 1, wantFile: "Playlist 1.csv"},
		{name: "multiple playlists markdown export", format: formatter.FormatMarkdown, playlists: 5, workers: 2, wantFile: "Playlist 5.md"},
		{name: "text export with worker cap", format: formatter.FormatText, playlists: 3, workers: 50, wantFile: "Playlist 2.txt"},
		{name: "default format", playlists: 2, wantFile: "Playlist 2.csv"},
		{name: "empty store", format: formatter.FormatJSON, playlists: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			result, err := BulkExport(context.Background(), seededStore(tt.playlists), nil, BulkExportOpts{
				Format:     tt.format,
				OutputDir:  dir,
				NumWorkers: tt.workers,
			})
			if err != nil {
				t.Fatalf("BulkExport() error = %v", err)
			}

			if result.TotalPlaylists != tt.playlists || result.SuccessfulExports != tt.playlists || result.FailedExports != 0 {
				t.Errorf("unexpected counts %+v", result)
			}
			if len(result.Results) != tt.playlists {
				t.Errorf("expected %d results, got %d", tt.playlists, len(result.Results))
			}
			for i := 1; i < len(result.Results); i++ {
				if result.Results[i-1].Playlist > result.Results[i].Playlist {
					t.Error("results are not sorted by playlist")
				}
			}
			if tt.wantFile != "" {
				th.AssertFileExists(t, filepath.Join(dir, tt.wantFile))
			}
			th.AssertFileExists(t, result.ManifestPath)
		})
	}
}

func TestBulkExportPartialFailure(t *testing.T) {
	dir := t.TempDir()
	store := flakyStore{MockStore: seededStore(3), fail: "Playlist 2"}
	prog := make(chan ProgressUpdate, 32)

	result, err := BulkExport(context.Background(), store, prog, BulkExportOpts{OutputDir: dir, RateLimit: 1000})
	if err != nil {
		t.Fatalf("BulkExport() error = %v", err)
	}
	close(prog)

	if result.SuccessfulExports != 2 || result.FailedExports != 1 {
		t.Errorf("expected 2 successes and 1 failure, got %+v", result)
	}
	failed := result.Results[1]
	if failed.Playlist != "Playlist 2" || failed.Success || !strings.Contains(failed.Error, "disk I/O error") {
		t.Errorf("unexpected failed result %+v", failed)
	}
	if _, err := os.Stat(filepath.Join(dir, "Playlist 2.csv")); !os.IsNotExist(err) {
		t.Error("failed playlist should not produce a file")
	}

	var manifest BulkExportResult
	if err := json.Unmarshal([]byte(th.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
		t.Fatalf("invalid manifest: %v", err)
	}
	if manifest.FailedExports != 1 || len(manifest.Results) != 3 {
		t.Errorf("unexpected manifest %+v", manifest)
	}

	var phases []Phase
	var failures int
	for update := range prog {
		phases = append(phases, update.Phase)
		if strings.Contains(update.Message, "✗ Playlist 2") {
			failures++
		}
	}
	if phases[0] != ListPlaylists || phases[len(phases)-1] != WriteManifest {
		t.Errorf("unexpected phase order %v", phases)
	}
	if failures != 1 {
		t.Errorf("expected one failure update, got %d", failures)
	}
}

func TestBulkExportErrors(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		if _, err := BulkExport(context.Background(), nil, nil, BulkExportOpts{}); !errors.Is(err, shared.ErrStoreUnavailable) {
			t.Errorf("expected ErrStoreUnavailable, got %v", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := BulkExport(context.Background(), seededStore(1), nil, BulkExportOpts{Format: "xml", OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("list failure", func(t *testing.T) {
		store := seededStore(1)
		store.Err = errors.New("database is locked")

		_, err := BulkExport(context.Background(), store, nil, BulkExportOpts{OutputDir: t.TempDir()})
		if err == nil || !strings.Contains(err.Error(), "database is locked") {
			t.Errorf("expected list error, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := BulkExport(ctx, seededStore(3), nil, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestBulkExportFileNameCollisions(t *testing.T) {
	dir := t.TempDir()
	store := th.NewMockStore().
		Seed("Rock/Pop", models.Track{Artist: "A", Title: "One"}).
		Seed("Rock_Pop", models.Track{Artist: "B", Title: "Two"}, models.Track{Artist: "C", Title: "Three"}).
		Seed("rock_pop", models.Track{Artist: "D", Title: "Four"}).
		Seed("manifest", models.Track{Artist: "E", Title: "Five"})

	result, err := BulkExport(context.Background(), store, nil, BulkExportOpts{Format: formatter.FormatJSON, OutputDir: dir})
	if err != nil {
		t.Fatalf("BulkExport() error = %v", err)
	}
	if result.SuccessfulExports != 4 {
		t.Fatalf("expected 4 successful exports, got %+v", result)
	}

	want := map[string]string{
		"Rock/Pop": "Rock_Pop.json",
		"Rock_Pop": "Rock_Pop_2.json",
		"rock_pop": "rock_pop_3.json",
		"manifest": "manifest_2.json",
	}
	for _, res := range result.Results {
		if got := filepath.Base(res.File); got != want[res.Playlist] {
			t.Errorf("%s exported to %s, want %s", res.Playlist, got, want[res.Playlist])
		}

		var exported struct {
			Playlist string `json:"playlist"`
		}
		if err := json.Unmarshal([]byte(th.MustReadFile(t, res.File)), &exported); err != nil {
			t.Fatalf("invalid export %s: %v", res.File, err)
		}
		if exported.Playlist != res.Playlist {
			t.Errorf("%s holds playlist %q, want %q", res.File, exported.Playlist, res.Playlist)
		}
	}

	var manifest BulkExportResult
	if err := json.Unmarshal([]byte(th.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
		t.Fatalf("manifest was overwritten: %v", err)
	}
	if manifest.TotalPlaylists != 4 {
		t.Errorf("unexpected manifest %+v", manifest)
	}
}

func TestSendProgressDoesNotBlock(t *testing.T) {
	prog := make(chan ProgressUpdate, 1)
	sendProgress(prog, listingPlaylistsUpdate())
	sendProgress(prog, foundPlaylistsUpdate(2))
	sendProgress(nil, foundPlaylistsUpdate(2))

	if got := <-prog; got.Phase != ListPlaylists || got.Message != "Listing playlists..." {
		t.Errorf("unexpected update %+v", got)
	}
}

func TestExportFileName(t *testing.T) {
	tc := []struct{ in, want string }{
		{"Chill", "Chill"},
		{"Rock/Metal", "Rock_Metal"},
		{`a\b:c`, "a_b_c"},
		{".hidden", "_hidden"},
		{"  ", "_"},
	}

	for _, tt := range tc {
		if got := ExportFileName(tt.in); got != tt.want {
			t.Errorf("ExportFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
