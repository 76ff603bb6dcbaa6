package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/plview/internal/formatter"
	"github.com/desertthunder/plview/internal/models"
	"github.com/desertthunder/plview/internal/shared"
	"github.com/desertthunder/plview/internal/tasks"
	"github.com/urfave/cli/v3"
)

// requireArg returns the named positional argument or an [shared.ErrMissingArgument] error.
func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: <%s>", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// trackIDArg parses a positive track id from the named positional argument.
func trackIDArg(cmd *cli.Command, name string) (int64, error) {
	raw, err := requireArg(cmd, name)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: track id must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// playlistExists distinguishes a missing playlist from the other reasons a store call returns false.
func playlistExists(ctx context.Context, store models.Store, name string) (bool, error) {
	names, err := store.ListPlaylists(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}

// PlaylistList prints every playlist name.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	return r.withStore(ctx, func(store models.Store) error {
		names, err := store.ListPlaylists(ctx)
		if err != nil {
			return fmt.Errorf("failed to list playlists: %w", err)
		}

		if cmd.Bool("json") {
			return r.writeJSON(names, true)
		}

		if len(names) == 0 {
			return r.writePlain("No playlists.\n")
		}
		for _, name := range names {
			if err := r.writePlain("%s\n", name); err != nil {
				return err
			}
		}
		return nil
	})
}

// PlaylistShow prints the tracks of a playlist, optionally filtered and sorted.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}

	sort, err := models.ParseSortField(cmd.String("sort"))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}
	direction, err := models.ParseSortDirection(cmd.String("direction"))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}
	opts := models.ReadOptions{Search: cmd.String("search"), Sort: sort, Direction: direction}

	return r.withStore(ctx, func(store models.Store) error {
		exists, err := playlistExists(ctx, store, name)
		if err != nil {
			return fmt.Errorf("failed to list playlists: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
		}

		tracks, err := store.ReadPlaylist(ctx, name, opts)
		if err != nil {
			return fmt.Errorf("failed to read playlist: %w", err)
		}

		if cmd.Bool("json") {
			return r.writeJSON(tracks, true)
		}

		r.writePlainHeader(fmt.Sprintf("%s (%d tracks)", name, len(tracks)))
		for _, t := range tracks {
			if err := r.writePlain("%5d  %-10s  %s - %s  [%d plays]\n", t.ID, t.Date, t.Artist, t.Title, t.PlayCount); err != nil {
				return err
			}
		}
		return nil
	})
}

// PlaylistCreate creates an empty playlist.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}

	return r.withStore(ctx, func(store models.Store) error {
		created, err := store.CreatePlaylist(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to create playlist: %w", err)
		}
		if !created {
			return fmt.Errorf("%w: %q", shared.ErrPlaylistExists, name)
		}

		r.logger.Info("created playlist", "name", name)
		return r.writePlain("✓ Created playlist %s\n", name)
	})
}

// PlaylistRemove deletes an empty playlist.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}

	return r.withStore(ctx, func(store models.Store) error {
		removed, err := store.RemovePlaylist(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to remove playlist: %w", err)
		}
		if !removed {
			exists, err := playlistExists(ctx, store, name)
			if err != nil {
				return fmt.Errorf("failed to list playlists: %w", err)
			}
			if exists {
				return fmt.Errorf("%w: %q", shared.ErrPlaylistNotEmpty, name)
			}
			return fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
		}

		r.logger.Info("removed playlist", "name", name)
		return r.writePlain("✓ Removed playlist %s\n", name)
	})
}

// PlaylistAdd adds a track to a playlist, reusing the stored track when artist and title already exist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	playlist, err := requireArg(cmd, "playlist")
	if err != nil {
		return err
	}

	track := models.Track{
		Date:   cmd.String("date"),
		Artist: strings.TrimSpace(cmd.String("artist")),
		Title:  strings.TrimSpace(cmd.String("title")),
		URL:    strings.TrimSpace(cmd.String("url")),
	}
	if track.Date == "" {
		track.Date = time.Now().Format(time.DateOnly)
	}
	if err := track.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	return r.withStore(ctx, func(store models.Store) error {
		added, err := store.AddTrack(ctx, playlist, track)
		if err != nil {
			return fmt.Errorf("failed to add track: %w", err)
		}
		if !added {
			exists, err := playlistExists(ctx, store, playlist)
			if err != nil {
				return fmt.Errorf("failed to list playlists: %w", err)
			}
			if !exists {
				return fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, playlist)
			}
			r.logger.Warn("track already in playlist", "playlist", playlist, "artist", track.Artist, "title", track.Title)
			return r.writePlain("%s - %s is already in %s\n", track.Artist, track.Title, playlist)
		}

		r.logger.Info("added track", "playlist", playlist, "artist", track.Artist, "title", track.Title)
		return r.writePlain("✓ Added %s - %s to %s\n", track.Artist, track.Title, playlist)
	})
}

// PlaylistRemoveTrack removes a track from a playlist. Removing an absent track is not an error.
func (r *Runner) PlaylistRemoveTrack(ctx context.Context, cmd *cli.Command) error {
	playlist, err := requireArg(cmd, "playlist")
	if err != nil {
		return err
	}
	id, err := trackIDArg(cmd, "id")
	if err != nil {
		return err
	}

	return r.withStore(ctx, func(store models.Store) error {
		if err := store.RemoveTrack(ctx, id, playlist); err != nil {
			return fmt.Errorf("failed to remove track: %w", err)
		}

		r.logger.Info("removed track", "playlist", playlist, "id", id)
		return r.writePlain("✓ Removed track %d from %s\n", id, playlist)
	})
}

// PlaylistMove moves a track from one playlist to another.
func (r *Runner) PlaylistMove(ctx context.Context, cmd *cli.Command) error {
	id, err := trackIDArg(cmd, "id")
	if err != nil {
		return err
	}
	from, err := requireArg(cmd, "from")
	if err != nil {
		return err
	}
	to, err := requireArg(cmd, "to")
	if err != nil {
		return err
	}

	return r.withStore(ctx, func(store models.Store) error {
		moved, err := store.MoveTrack(ctx, id, from, to)
		if err != nil {
			return fmt.Errorf("failed to move track: %w", err)
		}
		if !moved {
			return fmt.Errorf("%w: track %d cannot move from %q to %q", shared.ErrInvalidArgument, id, from, to)
		}

		r.logger.Info("moved track", "id", id, "from", from, "to", to)
		return r.writePlain("✓ Moved track %d from %s to %s\n", id, from, to)
	})
}

// PlaylistPlay records one play of a track.
func (r *Runner) PlaylistPlay(ctx context.Context, cmd *cli.Command) error {
	id, err := trackIDArg(cmd, "id")
	if err != nil {
		return err
	}

	return r.withStore(ctx, func(store models.Store) error {
		found, err := store.IncrementPlayCount(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to record play: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id)
		}

		return r.writePlain("✓ Recorded play of track %d\n", id)
	})
}

// PlaylistRandom prints one track picked from every playlist.
func (r *Runner) PlaylistRandom(ctx context.Context, cmd *cli.Command) error {
	return r.withStore(ctx, func(store models.Store) error {
		track, err := store.RandomTrack(ctx)
		if err != nil {
			return fmt.Errorf("failed to pick a track: %w", err)
		}

		if cmd.Bool("json") {
			return r.writeJSON(track, true)
		}
		if track == nil {
			return r.writePlain("No tracks available.\n")
		}
		return r.writePlain("%d  %s - %s  %s\n", track.ID, track.Artist, track.Title, track.URL)
	})
}

// PlaylistExport writes a playlist in the requested format to a file or stdout.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	return r.withStore(ctx, func(store models.Store) error {
		exists, err := playlistExists(ctx, store, name)
		if err != nil {
			return fmt.Errorf("failed to list playlists: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
		}

		tracks, err := store.ReadPlaylist(ctx, name, models.ReadOptions{})
		if err != nil {
			return fmt.Errorf("failed to read playlist: %w", err)
		}

		output := cmd.String("output")
		if output == "-" {
			return formatter.WriteExport(r.output, format, name, tracks)
		}

		path, err := formatter.WriteExportFile(output, format, name, tracks)
		if err != nil {
			return err
		}
		r.logger.Info("exported playlist", "name", name, "format", format, "path", path)
		return r.writePlain("✓ Exported %d tracks to %s\n", len(tracks), path)
	})
}

// PlaylistExportAll exports every playlist concurrently, logging progress as each one finishes.
func (r *Runner) PlaylistExportAll(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}

	return r.withStore(ctx, func(store models.Store) error {
		prog := make(chan tasks.ProgressUpdate, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for update := range prog {
				r.logger.Info(update.Message, "phase", update.Phase)
			}
		}()

		result, err := tasks.BulkExport(ctx, store, prog, opts)
		close(prog)
		<-done
		if err != nil {
			return fmt.Errorf("bulk export failed: %w", err)
		}

		r.writePlainHeader(fmt.Sprintf("Exported %d/%d playlists to %s", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory))
		for _, res := range result.Results {
			if res.Success {
				r.writePlain("✓ %s → %s (%d tracks)\n", res.Playlist, res.File, res.Tracks)
			} else {
				r.writePlain("✗ %s: %s\n", res.Playlist, res.Error)
			}
		}
		return r.writePlain("Manifest: %s\n", result.ManifestPath)
	})
}
