package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plview/internal/models"
	"github.com/desertthunder/plview/internal/repositories"
	"github.com/desertthunder/plview/internal/shared"
	"github.com/urfave/cli/v3"
)

// StoreOpener opens the storage backend described by a [shared.StoreConfig].
type StoreOpener func(ctx context.Context, cfg shared.StoreConfig, logger *log.Logger) (models.Store, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
	open   StoreOpener
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	Open   StoreOpener
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Open == nil {
		opts.Open = repositories.Open
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		open:   opts.Open,
	}
}

// SetLogger replaces the logger used by the runner and every store it opens afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, playlistCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure resolves the configuration from the --config and --env flags before any command runs.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	config, err := shared.ResolveConfig(cmd.String("config"), cmd.String("env"))
	if err != nil {
		return ctx, err
	}

	if err := shared.ApplyLogConfig(r.logger, config.Log); err != nil {
		return ctx, err
	}

	r.config = config
	return ctx, nil
}

// openStore opens the configured backend. Callers own the returned store and must close it.
func (r *Runner) openStore(ctx context.Context) (models.Store, error) {
	store, err := r.open(ctx, r.config.Store, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", r.config.Store.Backend, err)
	}
	return store, nil
}

// withStore opens the configured store, runs fn, and closes the store.
func (r *Runner) withStore(ctx context.Context, fn func(models.Store) error) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			r.logger.Warn("failed to close store", "error", err)
		}
	}()

	return fn(store)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
