package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/plview/internal/formatter"
	"github.com/desertthunder/plview/internal/models"
	"github.com/desertthunder/plview/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers = 4
	maxWorkers     = 10
	manifestName   = "manifest.json"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format, defaults to CSV
	OutputDir  string           // Base output directory (default: playlists_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max: 10)
	RateLimit  float64          // Playlist reads per second, 0 means unlimited
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	Playlist string `json:"playlist"`
	File     string `json:"file,omitempty"`
	Tracks   int    `json:"tracks"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// BulkExportResult summarizes a [BulkExport] run. Results are sorted by playlist name.
type BulkExportResult struct {
	Format            formatter.Format       `json:"format"`
	OutputDirectory   string                 `json:"output_directory"`
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	Results           []PlaylistExportResult `json:"results"`
	ManifestPath      string                 `json:"-"`
}

// BulkExport exports every playlist in store concurrently.
//
// A failure to export one playlist is recorded in its result and does not stop the others.
// An error is returned only when the playlists cannot be listed, the output directory cannot be
// created, the context is cancelled, or the manifest cannot be written.
func BulkExport(ctx context.Context, store models.Store, prog chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store not initialized", shared.ErrStoreUnavailable)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatCSV
	}
	if !slices.Contains(formatter.Formats, opts.Format) {
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("playlists_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}

	sendProgress(prog, listingPlaylistsUpdate())
	names, err := store.ListPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	sendProgress(prog, foundPlaylistsUpdate(len(names)))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		TotalPlaylists:  len(names),
		Results:         make([]PlaylistExportResult, 0, len(names)),
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	jobs := make(chan exportJob, len(names))
	results := make(chan PlaylistExportResult, len(names))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go exportWorker(ctx, &wg, store, limiter, jobs, results, opts)
	}

	for _, job := range planExports(names, opts) {
		jobs <- job
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(names), res.Playlist, res.Tracks))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(names), res.Playlist, fmt.Errorf("%s", res.Error)))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	slices.SortFunc(result.Results, func(a, b PlaylistExportResult) int {
		return strings.Compare(a.Playlist, b.Playlist)
	})

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))

	return result, nil
}

// exportJob pairs a playlist with the file it is written to.
type exportJob struct {
	playlist string
	path     string
}

// planExports assigns every playlist a distinct file in the output directory.
//
// Titles that map to the same file name, or onto the manifest, get a numeric suffix
// in listing order. Names are compared case-insensitively.
func planExports(names []string, opts BulkExportOpts) []exportJob {
	ext := opts.Format.Ext()
	used := map[string]bool{strings.ToLower(manifestName): true}
	jobs := make([]exportJob, 0, len(names))

	for _, name := range names {
		base := ExportFileName(name)
		file := base + ext
		for i := 2; used[strings.ToLower(file)]; i++ {
			file = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		used[strings.ToLower(file)] = true
		jobs = append(jobs, exportJob{playlist: name, path: filepath.Join(opts.OutputDir, file)})
	}
	return jobs
}

// exportWorker is a worker goroutine that exports playlists from the jobs channel.
func exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	store models.Store,
	limiter *rate.Limiter,
	jobs <-chan exportJob,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		results <- exportSinglePlaylist(ctx, store, job, opts.Format)
	}
}

// exportSinglePlaylist reads one playlist and writes it in the requested format.
func exportSinglePlaylist(ctx context.Context, store models.Store, job exportJob, format formatter.Format) PlaylistExportResult {
	result := PlaylistExportResult{Playlist: job.playlist}

	tracks, err := store.ReadPlaylist(ctx, job.playlist, models.ReadOptions{})
	if err != nil {
		result.Error = fmt.Sprintf("failed to read playlist: %v", err)
		return result
	}
	result.Tracks = len(tracks)

	written, err := formatter.WriteExportFile(job.path, format, job.playlist, tracks)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.File = written
	result.Success = true
	return result
}

// ExportFileName maps a playlist title onto a safe file name.
//
// Path separators, control characters, and a leading dot are replaced with "_".
func ExportFileName(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r < 0x20:
			return '_'
		default:
			return r
		}
	}, strings.TrimSpace(name))

	if safe == "" || strings.HasPrefix(safe, ".") {
		safe = "_" + strings.TrimPrefix(safe, ".")
	}
	return safe
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
