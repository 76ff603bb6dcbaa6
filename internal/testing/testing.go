// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/plview/internal/models"
)

// MockStore is an in-memory test double for [models.Store].
//
// Setting Err makes every method fail with it, which simulates a storage fault.
type MockStore struct {
	Err error

	mu        sync.Mutex
	playlists []string
	members   map[string][]int64
	tracks    map[int64]*models.Track
	nextID    int64
	closed    bool
}

var _ models.Store = (*MockStore)(nil)

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{members: make(map[string][]int64), tracks: make(map[int64]*models.Track)}
}

// Seed creates playlist and adds tracks to it, ignoring duplicates.
func (m *MockStore) Seed(playlist string, tracks ...models.Track) *MockStore {
	ctx := context.Background()
	m.CreatePlaylist(ctx, playlist)
	for _, t := range tracks {
		m.AddTrack(ctx, playlist, t)
	}
	return m
}

// Closed reports whether Close has been called.
func (m *MockStore) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockStore) ListPlaylists(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.playlists), nil
}

func (m *MockStore) ReadPlaylist(ctx context.Context, name string, opts models.ReadOptions) ([]models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	tracks := []models.Track{}
	for _, id := range m.members[name] {
		tracks = append(tracks, *m.tracks[id])
	}
	tracks = models.FilterTracks(tracks, opts.Search)
	models.SortTracks(tracks, opts.Sort, opts.Direction)
	return tracks, nil
}

// RandomTrack returns the lowest numbered track so tests stay deterministic.
func (m *MockStore) RandomTrack(ctx context.Context) (*models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for id := int64(1); id <= m.nextID; id++ {
		if t, ok := m.tracks[id]; ok {
			track := *t
			return &track, nil
		}
	}
	return nil, nil
}

func (m *MockStore) CreatePlaylist(ctx context.Context, title string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if slices.Contains(m.playlists, title) {
		return false, nil
	}
	m.playlists = append(m.playlists, title)
	return true, nil
}

func (m *MockStore) RemovePlaylist(ctx context.Context, title string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	idx := slices.Index(m.playlists, title)
	if idx < 0 || len(m.members[title]) > 0 {
		return false, nil
	}
	m.playlists = slices.Delete(m.playlists, idx, idx+1)
	return true, nil
}

func (m *MockStore) AddTrack(ctx context.Context, playlist string, track models.Track) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if err := track.Validate(); err != nil {
		return false, err
	}
	if !slices.Contains(m.playlists, playlist) {
		return false, nil
	}

	var id int64
	for existing, t := range m.tracks {
		if t.Artist == track.Artist && t.Title == track.Title {
			id = existing
		}
	}
	if id == 0 {
		m.nextID++
		id = m.nextID
		track.ID, track.PlayCount = id, 0
		m.tracks[id] = &track
	}

	if slices.Contains(m.members[playlist], id) {
		return false, nil
	}
	m.members[playlist] = append(m.members[playlist], id)
	return true, nil
}

func (m *MockStore) RemoveTrack(ctx context.Context, trackID int64, playlist string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.members[playlist] = slices.DeleteFunc(m.members[playlist], func(id int64) bool { return id == trackID })
	return nil
}

func (m *MockStore) MoveTrack(ctx context.Context, trackID int64, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if !slices.Contains(m.playlists, from) || !slices.Contains(m.playlists, to) {
		return false, nil
	}
	if slices.Contains(m.members[to], trackID) || !slices.Contains(m.members[from], trackID) {
		return false, nil
	}
	m.members[from] = slices.DeleteFunc(m.members[from], func(id int64) bool { return id == trackID })
	m.members[to] = append(m.members[to], trackID)
	return true, nil
}

func (m *MockStore) IncrementPlayCount(ctx context.Context, trackID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	t, ok := m.tracks[trackID]
	if !ok {
		return false, nil
	}
	t.PlayCount++
	return true, nil
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
