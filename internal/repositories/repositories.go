package repositories

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plview/internal/models"
	"github.com/desertthunder/plview/internal/shared"
)

// Open creates the store selected by cfg.Backend.
//
// SQLite databases are migrated to the latest schema before the store is returned.
func Open(ctx context.Context, cfg shared.StoreConfig, logger *log.Logger) (models.Store, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	switch cfg.Backend {
	case shared.BackendSQLite:
		db, err := shared.NewDatabase(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrStoreUnavailable, err)
		}
		shared.ConfigureDatabase(db, cfg.Path, cfg.MaxOpenConns, cfg.MaxIdleConns)

		if err := shared.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %w", shared.ErrStoreUnavailable, err)
		}

		logger.Debug("opened sqlite store", "path", cfg.Path)
		return NewSQLiteStore(db, logger), nil
	case shared.BackendFiles:
		store, err := NewFileStore(cfg.Folder, logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrStoreUnavailable, err)
		}

		logger.Debug("opened file store", "folder", cfg.Folder)
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}
