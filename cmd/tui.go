package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plview/internal/models"
	"github.com/desertthunder/plview/internal/shared"
	"github.com/desertthunder/plview/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal browser over the configured store.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	path := cmd.String("log-file")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	fileLogger := shared.NewLogger(f)
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	return r.withStore(ctx, func(store models.Store) error {
		p := tea.NewProgram(ui.NewModel(ctx, store), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	})
}
