package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/ghuser/emssupply/migrations"
	"github.com/ghuser/emssupply/pkg/config"
	"github.com/ghuser/emssupply/pkg/database"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/pkg/migrator"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	if !*down {
		if err := migrator.RunMigrations(cfg.DatabaseURL, migrations.FS()); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
		return
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrator.Down(ctx, pool.DB(), migrations.FS()); err != nil {
		log.Error("rollback failed", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("rolled back one migration")
}
