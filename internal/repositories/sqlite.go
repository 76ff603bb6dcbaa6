package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plview/internal/models"
	"github.com/desertthunder/plview/internal/shared"
)

const (
	listPlaylistsQuery = `SELECT title FROM playlists ORDER BY id`

	readPlaylistQuery = `
		SELECT t.id, t.date, t.artist, t.title, t.url, t.play_count
		FROM tracks t
		JOIN playlist_tracks pt ON pt.track_id = t.id
		JOIN playlists p ON p.id = pt.playlist_id
		WHERE p.title = ?`

	searchClause = ` AND (t.artist LIKE ? ESCAPE '\' OR t.title LIKE ? ESCAPE '\')`

	randomTrackQuery = `
		SELECT id, date, artist, title, url, play_count
		FROM tracks
		ORDER BY RANDOM()
		LIMIT 1`

	createPlaylistQuery    = `INSERT INTO playlists (title) VALUES (?) ON CONFLICT(title) DO NOTHING`
	playlistIDQuery        = `SELECT id FROM playlists WHERE title = ?`
	playlistHasTracksQuery = `SELECT EXISTS(SELECT 1 FROM playlist_tracks WHERE playlist_id = ?)`
	deletePlaylistQuery    = `DELETE FROM playlists WHERE id = ?`

	upsertTrackQuery = `
		INSERT INTO tracks (date, artist, title, url)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(artist, title) DO NOTHING`
	trackIDQuery = `SELECT id FROM tracks WHERE artist = ? AND title = ?`

	addMembershipQuery    = `INSERT OR IGNORE INTO playlist_tracks (playlist_id, track_id) VALUES (?, ?)`
	insertMembershipQuery = `INSERT INTO playlist_tracks (playlist_id, track_id) VALUES (?, ?)`
	isMemberQuery         = `SELECT EXISTS(SELECT 1 FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?)`
	deleteMembershipQuery = `DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?`

	removeTrackQuery = `
		DELETE FROM playlist_tracks
		WHERE track_id = ? AND playlist_id = (SELECT id FROM playlists WHERE title = ?)`

	incrementPlayCountQuery = `UPDATE tracks SET play_count = play_count + 1 WHERE id = ?`
)

// sortColumns is the only source of ORDER BY expressions. Anything not listed here never reaches a query.
var sortColumns = map[models.SortField]string{
	models.SortDate:      "t.date",
	models.SortArtist:    "t.artist",
	models.SortTitle:     "t.title",
	models.SortPlayCount: "t.play_count",
}

// SQLiteStore implements [models.Store] over the relational schema in shared/sql.
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
}

// NewSQLiteStore creates a SQLiteStore using an open database with migrations applied.
func NewSQLiteStore(db *sql.DB, logger *log.Logger) *SQLiteStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SQLiteStore{db: db, logger: shared.WithLogger(logger, "store", shared.BackendSQLite)}
}

// ListPlaylists returns all playlist titles in creation order.
func (s *SQLiteStore) ListPlaylists(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, listPlaylistsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan playlist title: %w", err)
		}
		titles = append(titles, title)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating playlists: %w", err)
	}

	return titles, nil
}

// ReadPlaylist returns the tracks that belong to the named playlist.
//
// Without a sort field tracks come back in the order they were added.
func (s *SQLiteStore) ReadPlaylist(ctx context.Context, name string, opts models.ReadOptions) ([]models.Track, error) {
	order, err := orderClause(opts.Sort, opts.Direction)
	if err != nil {
		return nil, err
	}

	query := readPlaylistQuery
	args := []any{name}
	if opts.Search != "" {
		pattern := "%" + escapeLike(opts.Search) + "%"
		query += searchClause
		args = append(args, pattern, pattern)
	}
	query += order

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist %q: %w", name, err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracks: %w", err)
	}

	return tracks, nil
}

// RandomTrack returns one track chosen uniformly from every stored track, or nil when there are none.
func (s *SQLiteStore) RandomTrack(ctx context.Context) (*models.Track, error) {
	track, err := scanTrack(s.db.QueryRowContext(ctx, randomTrackQuery))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return track, err
}

// CreatePlaylist inserts a playlist, reporting false when the title already exists.
func (s *SQLiteStore) CreatePlaylist(ctx context.Context, title string) (bool, error) {
	if strings.TrimSpace(title) == "" {
		return false, fmt.Errorf("%w: title is required", shared.ErrInvalidName)
	}

	result, err := s.db.ExecContext(ctx, createPlaylistQuery, title)
	if err != nil {
		return false, fmt.Errorf("failed to create playlist: %w", err)
	}

	created, err := affected(result)
	if err != nil {
		return false, err
	}

	s.logger.Debug("create playlist", "title", title, "created", created)
	return created, nil
}

// RemovePlaylist deletes an empty playlist. Playlists with tracks are left alone and report false.
func (s *SQLiteStore) RemovePlaylist(ctx context.Context, title string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, ok, err := lookupID(ctx, tx, playlistIDQuery, title)
	if err != nil || !ok {
		return false, err
	}

	var hasTracks bool
	if err := tx.QueryRowContext(ctx, playlistHasTracksQuery, id).Scan(&hasTracks); err != nil {
		return false, fmt.Errorf("failed to count playlist tracks: %w", err)
	}
	if hasTracks {
		s.logger.Debug("refusing to remove non-empty playlist", "title", title)
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, deletePlaylistQuery, id); err != nil {
		return false, fmt.Errorf("failed to delete playlist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// AddTrack links a track to a playlist, creating the track row on first reference.
//
// A track with the same artist and title is reused as is. The result is false when the
// playlist does not exist or already contains the track.
func (s *SQLiteStore) AddTrack(ctx context.Context, playlist string, track models.Track) (bool, error) {
	if err := track.Validate(); err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	playlistID, ok, err := lookupID(ctx, tx, playlistIDQuery, playlist)
	if err != nil || !ok {
		return false, err
	}

	if _, err := tx.ExecContext(ctx, upsertTrackQuery, track.Date, track.Artist, track.Title, track.URL); err != nil {
		return false, fmt.Errorf("failed to insert track: %w", err)
	}

	trackID, ok, err := lookupID(ctx, tx, trackIDQuery, track.Artist, track.Title)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("track %q by %q missing after insert", track.Title, track.Artist)
	}

	result, err := tx.ExecContext(ctx, addMembershipQuery, playlistID, trackID)
	if err != nil {
		return false, fmt.Errorf("failed to add track to playlist: %w", err)
	}

	added, err := affected(result)
	if err != nil || !added {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("added track", "playlist", playlist, "track_id", trackID)
	return true, nil
}

// RemoveTrack drops a membership. Missing playlists and memberships are ignored.
func (s *SQLiteStore) RemoveTrack(ctx context.Context, trackID int64, playlist string) error {
	if _, err := s.db.ExecContext(ctx, removeTrackQuery, trackID, playlist); err != nil {
		return fmt.Errorf("failed to remove track from playlist: %w", err)
	}
	return nil
}

// MoveTrack moves a membership from one playlist to another in a single transaction.
func (s *SQLiteStore) MoveTrack(ctx context.Context, trackID int64, from, to string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	fromID, ok, err := lookupID(ctx, tx, playlistIDQuery, from)
	if err != nil || !ok {
		return false, err
	}
	toID, ok, err := lookupID(ctx, tx, playlistIDQuery, to)
	if err != nil || !ok {
		return false, err
	}

	var inDestination bool
	if err := tx.QueryRowContext(ctx, isMemberQuery, toID, trackID).Scan(&inDestination); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	if inDestination {
		return false, nil
	}

	result, err := tx.ExecContext(ctx, deleteMembershipQuery, fromID, trackID)
	if err != nil {
		return false, fmt.Errorf("failed to remove track from source: %w", err)
	}
	removed, err := affected(result)
	if err != nil || !removed {
		return false, err
	}

	if _, err := tx.ExecContext(ctx, insertMembershipQuery, toID, trackID); err != nil {
		return false, fmt.Errorf("failed to add track to destination: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("moved track", "track_id", trackID, "from", from, "to", to)
	return true, nil
}

// IncrementPlayCount adds one to a track's play count in a single statement.
func (s *SQLiteStore) IncrementPlayCount(ctx context.Context, trackID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, incrementPlayCountQuery, trackID)
	if err != nil {
		return false, fmt.Errorf("failed to increment play count: %w", err)
	}
	return affected(result)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner is satisfied by both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanTrack(row scanner) (*models.Track, error) {
	var t models.Track
	if err := row.Scan(&t.ID, &t.Date, &t.Artist, &t.Title, &t.URL, &t.PlayCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	return &t, nil
}

// lookupID runs a single-column id query, reporting false when no row matches.
func lookupID(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, query, args...).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("failed to look up id: %w", err)
	}
	return id, true, nil
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n > 0, nil
}

// orderClause maps a sort key onto an ORDER BY clause via [sortColumns].
func orderClause(field models.SortField, dir models.SortDirection) (string, error) {
	switch field {
	case models.SortNone:
		return " ORDER BY pt.rowid", nil
	case models.SortRandom:
		return " ORDER BY RANDOM()", nil
	}

	column, ok := sortColumns[field]
	if !ok {
		return "", fmt.Errorf("%w: %d", models.ErrUnknownSortField, field)
	}
	return fmt.Sprintf(" ORDER BY %s %s, t.id ASC", column, dir.SQL()), nil
}

// escapeLike escapes LIKE wildcards so the search term matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
