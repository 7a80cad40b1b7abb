package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ghuser/titleguard/migrations/item"
	"github.com/ghuser/titleguard/pkg/config"
	"github.com/ghuser/titleguard/pkg/logger"
	"github.com/ghuser/titleguard/pkg/migrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)
	if err := migrator.RunMigrations(context.Background(), cfg.DefinitionDatabaseURL, item.FS, log); err != nil {
		log.Error("item migrations failed", "error", err)
		os.Exit(1)
	}
}
