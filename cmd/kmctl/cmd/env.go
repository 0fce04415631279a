package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/kidneymate/server/internal/app"
	"github.com/kidneymate/server/internal/config"
	"github.com/kidneymate/server/internal/db"
	"github.com/kidneymate/server/internal/logger"
)

// openDB connects without migrating, for the migrate commands.
func openDB() (*config.Config, *sqlx.DB, func(), error) {
	cfg := config.Load()
	flush := logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		flush()
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cfg, database, func() {
		_ = database.Close()
		flush()
	}, nil
}

// openApp builds the full application, migrating the database first.
func openApp() (*app.App, func(), error) {
	cfg := config.Load()
	flush := logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	a, err := app.New(cfg)
	if err != nil {
		flush()
		return nil, nil, err
	}

	return a, func() {
		_ = a.Close()
		flush()
	}, nil
}
