package main

import (
	"github.com/P3chys/exchange-api/internal/config"
	"github.com/P3chys/exchange-api/internal/database"
	"github.com/P3chys/exchange-api/internal/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.Must(cfg.LogLevel, cfg.GinMode)
	defer log.Sync()

	if envErr != nil {
		log.Debug("no .env file found")
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.GinMode, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	log.Info("running migrations")
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	updated, err := database.BackfillDocumentTypes(db)
	if err != nil {
		log.Fatal("backfill failed", zap.Error(err))
	}
	log.Info("document types backfilled", zap.Int64("documents", updated))

	if err := database.SeedAdmin(db, cfg, log); err != nil {
		log.Fatal("failed to seed administrator", zap.Error(err))
	}

	log.Info("migration completed")
}
