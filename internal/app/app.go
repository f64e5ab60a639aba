// Package app defines the App struct that composes the program's main
// dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - database pool
//
// New opens the pool; Close releases it.
package app

import (
	"context"
	"fmt"

	"github.com/deppfellow/catalog-smoke/internal/config"
	"github.com/deppfellow/catalog-smoke/internal/database"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/catalog-smoke/internal/logger"
)

// App is the application container that holds shared resources.
type App struct {
	// Config holds all environment/config values for the app.
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	// If New Relic is disabled, it exists but holds a nil application.
	LoggerService *loggerPkg.LoggerService

	// DB holds the PostgreSQL pool wrapper.
	DB *database.Database
}

// New opens the PostgreSQL pool (pinging it) and, when enabled, applies
// the embedded migrations.
//
// On error nothing is left open; the caller still owns loggerService.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*App, error) {
	db, err := database.New(ctx, cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, logger, cfg); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
	}, nil
}

// Close releases the pool. Safe to call more than once.
//
// The LoggerService is not shut down here; it outlives the App so the
// caller can still report a failed New.
func (a *App) Close() error {
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
