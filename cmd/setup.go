package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/plview/internal/shared"
	"github.com/urfave/cli/v3"
)

// openDatabase opens the configured SQLite database for schema management.
func (r *Runner) openDatabase() (*sql.DB, error) {
	cfg := r.config.Store
	if cfg.Backend != shared.BackendSQLite {
		return nil, fmt.Errorf("%w: schema commands need the %q backend, configured backend is %q",
			shared.ErrInvalidConfig, shared.BackendSQLite, cfg.Backend)
	}

	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, cfg.Path, cfg.MaxOpenConns, cfg.MaxIdleConns)
	return db, nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Store.Path)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Store.Path)

	return r.writeStatuses(ctx, db)
}

// SetupRollback reverts the latest applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(ctx, db); err != nil {
		return err
	}
	r.logger.Info("rolled back latest migration", "path", r.config.Store.Path)

	return r.writeStatuses(ctx, db)
}

// SetupStatus prints each migration and whether it has been applied.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	return r.writeStatuses(ctx, db)
}

// SetupConfig writes the example configuration to --output.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\n", path)
}

func (r *Runner) writeStatuses(ctx context.Context, db *sql.DB) error {
	statuses, err := shared.MigrationStatuses(ctx, db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		if err := r.writePlain("%04d  %-24s %s\n", s.Version, s.Name, state); err != nil {
			return err
		}
	}
	return nil
}
