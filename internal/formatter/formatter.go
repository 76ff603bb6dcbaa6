// package formatter exports playlist tracks to CSV, Markdown, plain text, and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/plview/internal/models"
	"github.com/desertthunder/plview/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// Formats lists every supported export format.
var Formats = []Format{FormatCSV, FormatMarkdown, FormatText, FormatJSON}

// ParseFormat accepts a format name or its common file extension ("md", "txt").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
}

// Ext returns the file extension used for the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return "." + string(f)
	}
}

// ExportToCSV writes tracks as headerless "date,artist,title,url,play_count" rows,
// the same layout the flat-file store reads.
func ExportToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	for _, track := range tracks {
		record := []string{
			track.Date,
			track.Artist,
			track.Title,
			track.URL,
			strconv.Itoa(track.PlayCount),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a numbered track list, linking titles to their URLs.
func ExportToMarkdown(name string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", name)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))

	buf.WriteString("## Tracks\n\n")
	for i, track := range tracks {
		title := track.Title
		if track.URL != "" {
			title = fmt.Sprintf("[%s](%s)", track.Title, track.URL)
		}
		fmt.Fprintf(&buf, "%d. %s - %s (%s)\n", i+1, track.Artist, title, plays(track.PlayCount))
	}

	return buf.Bytes(), nil
}

// ExportToText converts tracks to plain text format
func ExportToText(name string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", name)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))

	for i, track := range tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.Artist, track.Title)
	}

	return buf.Bytes(), nil
}

type jsonExport struct {
	Playlist string         `json:"playlist"`
	Tracks   []models.Track `json:"tracks"`
}

// ExportToJSON renders the playlist name and tracks as indented JSON.
func ExportToJSON(name string, tracks []models.Track) ([]byte, error) {
	if tracks == nil {
		tracks = []models.Track{}
	}
	data, err := json.MarshalIndent(jsonExport{Playlist: name, Tracks: tracks}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Export encodes tracks in format.
func Export(format Format, name string, tracks []models.Track) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(tracks)
	case FormatMarkdown:
		return ExportToMarkdown(name, tracks)
	case FormatText:
		return ExportToText(name, tracks)
	case FormatJSON:
		return ExportToJSON(name, tracks)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
}

// WriteExport encodes tracks and writes them to w.
func WriteExport(w io.Writer, format Format, name string, tracks []models.Track) error {
	data, err := Export(format, name, tracks)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// WriteExportFile writes an export to path, defaulting to {name}{ext} when path is empty.
//
// Returns the path written.
func WriteExportFile(path string, format Format, name string, tracks []models.Track) (string, error) {
	if path == "" {
		path = name + format.Ext()
	}

	data, err := Export(format, name, tracks)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func plays(n int) string {
	if n == 1 {
		return "1 play"
	}
	return fmt.Sprintf("%d plays", n)
}
