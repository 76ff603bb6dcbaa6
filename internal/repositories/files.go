package repositories

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"io/fs"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plview/internal/models"
	"github.com/desertthunder/plview/internal/shared"
)

const playlistExt = ".csv"

// FileStore implements [models.Store] over a directory of headerless CSV files, one per playlist.
//
// Each row is "date,artist,title,url" with an optional fifth play_count column. A track's ID is
// derived from its artist and title, so the same song listed in two files is the same track.
// Every mutation holds the store lock and replaces whole files via rename.
type FileStore struct {
	dir    string
	mu     sync.RWMutex
	logger *log.Logger
}

// NewFileStore creates a FileStore rooted at dir, creating the directory if needed.
func NewFileStore(dir string, logger *log.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: playlist folder is required", shared.ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create playlist folder: %w", err)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &FileStore{dir: dir, logger: shared.WithLogger(logger, "store", shared.BackendFiles)}, nil
}

// TrackID returns the stable identifier of the track with the given artist and title.
func TrackID(artist, title string) int64 {
	h := fnv.New64a()
	h.Write([]byte(artist))
	h.Write([]byte{0})
	h.Write([]byte(title))
	return int64(h.Sum64() & math.MaxInt64)
}

// ValidPlaylistName reports whether name can be used as a playlist file name.
//
// Separators, control characters, a leading dot and ".." are rejected.
func ValidPlaylistName(name string) bool {
	if strings.TrimSpace(name) == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsFunc(name, unicode.IsControl) {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

// ListPlaylists returns the playlist names sorted alphabetically.
func (s *FileStore) ListPlaylists(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names()
}

// ReadPlaylist loads one playlist file and applies search and sort in memory.
func (s *FileStore) ReadPlaylist(ctx context.Context, name string, opts models.ReadOptions) ([]models.Track, error) {
	if !ValidPlaylistName(name) {
		return []models.Track{}, nil
	}

	s.mu.RLock()
	tracks, _, err := s.read(name)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	tracks = models.FilterTracks(tracks, opts.Search)
	models.SortTracks(tracks, opts.Sort, opts.Direction)
	return tracks, nil
}

// RandomTrack pools the tracks of every playlist file and picks one uniformly.
func (s *FileStore) RandomTrack(ctx context.Context) (*models.Track, error) {
	s.mu.RLock()
	all, err := s.all()
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if len(all) == 0 {
		return nil, nil
	}

	track := all[rand.IntN(len(all))]
	return &track, nil
}

// CreatePlaylist creates an empty playlist file, reporting false when one exists.
func (s *FileStore) CreatePlaylist(ctx context.Context, title string) (bool, error) {
	if !ValidPlaylistName(title) {
		return false, fmt.Errorf("%w: %q", shared.ErrInvalidName, title)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path(title), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create playlist file: %w", err)
	}

	if err := f.Close(); err != nil {
		return false, fmt.Errorf("failed to close playlist file: %w", err)
	}

	s.logger.Debug("created playlist", "title", title)
	return true, nil
}

// RemovePlaylist deletes an empty playlist file.
func (s *FileStore) RemovePlaylist(ctx context.Context, title string) (bool, error) {
	if !ValidPlaylistName(title) {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tracks, ok, err := s.read(title)
	if err != nil || !ok {
		return false, err
	}
	if len(tracks) > 0 {
		return false, nil
	}

	if err := os.Remove(s.path(title)); err != nil {
		return false, fmt.Errorf("failed to remove playlist file: %w", err)
	}
	return true, nil
}

// AddTrack appends a track to a playlist file.
//
// When the track is already listed in another playlist its stored fields are reused.
func (s *FileStore) AddTrack(ctx context.Context, playlist string, track models.Track) (bool, error) {
	if err := track.Validate(); err != nil {
		return false, err
	}
	if !ValidPlaylistName(playlist) {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tracks, ok, err := s.read(playlist)
	if err != nil || !ok {
		return false, err
	}

	id := TrackID(track.Artist, track.Title)
	if containsTrack(tracks, id) {
		return false, nil
	}

	existing, found, err := s.find(id)
	if err != nil {
		return false, err
	}
	if found {
		track = existing
	} else {
		track.ID = id
		track.PlayCount = 0
	}

	if err := s.write(playlist, append(tracks, track)); err != nil {
		return false, err
	}

	s.logger.Debug("added track", "playlist", playlist, "track_id", id)
	return true, nil
}

// RemoveTrack removes a track from a playlist file if it is listed there.
func (s *FileStore) RemoveTrack(ctx context.Context, trackID int64, playlist string) error {
	if !ValidPlaylistName(playlist) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tracks, ok, err := s.read(playlist)
	if err != nil || !ok {
		return err
	}

	kept := slices.DeleteFunc(tracks, func(t models.Track) bool { return t.ID == trackID })
	if len(kept) == len(tracks) {
		return nil
	}
	return s.write(playlist, kept)
}

// MoveTrack moves a track between playlist files.
//
// The destination is written before the source so an interrupted move leaves the track in both
// playlists rather than in neither.
func (s *FileStore) MoveTrack(ctx context.Context, trackID int64, from, to string) (bool, error) {
	if !ValidPlaylistName(from) || !ValidPlaylistName(to) {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok, err := s.read(from)
	if err != nil || !ok {
		return false, err
	}
	destination, ok, err := s.read(to)
	if err != nil || !ok {
		return false, err
	}

	if containsTrack(destination, trackID) {
		return false, nil
	}

	idx := slices.IndexFunc(source, func(t models.Track) bool { return t.ID == trackID })
	if idx < 0 {
		return false, nil
	}

	if err := s.write(to, append(destination, source[idx])); err != nil {
		return false, err
	}
	if err := s.write(from, slices.Delete(source, idx, idx+1)); err != nil {
		return false, err
	}

	s.logger.Debug("moved track", "track_id", trackID, "from", from, "to", to)
	return true, nil
}

// IncrementPlayCount bumps the play count of a track in every playlist that lists it.
func (s *FileStore) IncrementPlayCount(ctx context.Context, trackID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.names()
	if err != nil {
		return false, err
	}

	found := false
	for _, name := range names {
		tracks, _, err := s.read(name)
		if err != nil {
			return false, err
		}

		idx := slices.IndexFunc(tracks, func(t models.Track) bool { return t.ID == trackID })
		if idx < 0 {
			continue
		}

		tracks[idx].PlayCount++
		if err := s.write(name, tracks); err != nil {
			return false, err
		}
		found = true
	}

	return found, nil
}

// Close is a no-op; the store holds no open files between calls.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+playlistExt)
}

func (s *FileStore) names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist folder: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != playlistExt {
			continue
		}
		if base := strings.TrimSuffix(name, playlistExt); ValidPlaylistName(base) {
			names = append(names, base)
		}
	}

	slices.Sort(names)
	return names, nil
}

// all returns every distinct track across playlist files.
func (s *FileStore) all() ([]models.Track, error) {
	names, err := s.names()
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var all []models.Track
	for _, name := range names {
		tracks, _, err := s.read(name)
		if err != nil {
			return nil, err
		}
		for _, t := range tracks {
			if !seen[t.ID] {
				seen[t.ID] = true
				all = append(all, t)
			}
		}
	}
	return all, nil
}

func (s *FileStore) find(id int64) (models.Track, bool, error) {
	all, err := s.all()
	if err != nil {
		return models.Track{}, false, err
	}
	idx := slices.IndexFunc(all, func(t models.Track) bool { return t.ID == id })
	if idx < 0 {
		return models.Track{}, false, nil
	}
	return all[idx], true, nil
}

// read parses a playlist file. The boolean is false when the file does not exist.
func (s *FileStore) read(name string) ([]models.Track, bool, error) {
	f, err := os.Open(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Track{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open playlist %q: %w", name, err)
	}
	defer f.Close()

	tracks, err := decodeTracks(f)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse playlist %q: %w", name, err)
	}
	return tracks, true, nil
}

// write replaces a playlist file with tracks via a temporary file in the same folder.
func (s *FileStore) write(name string, tracks []models.Track) error {
	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encodeTracks(tmp, tracks); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write playlist %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("failed to replace playlist %q: %w", name, err)
	}
	return nil
}

// decodeTracks reads headerless rows, skipping repeats of a track already seen in the file.
func decodeTracks(r io.Reader) ([]models.Track, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	tracks := []models.Track{}
	seen := make(map[int64]bool)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		field := func(i int) string {
			if i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		t := models.Track{Date: field(0), Artist: field(1), Title: field(2), URL: field(3)}
		if raw := field(4); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				line, _ := reader.FieldPos(4)
				return nil, fmt.Errorf("line %d: invalid play count %q", line, raw)
			}
			t.PlayCount = n
		}

		t.ID = TrackID(t.Artist, t.Title)
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func encodeTracks(w io.Writer, tracks []models.Track) error {
	writer := csv.NewWriter(w)
	for _, t := range tracks {
		record := []string{t.Date, t.Artist, t.Title, t.URL, strconv.Itoa(t.PlayCount)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func containsTrack(tracks []models.Track, id int64) bool {
	return slices.ContainsFunc(tracks, func(t models.Track) bool { return t.ID == id })
}
