package main

import (
	"context"
	"flag"
	"os"

	"github.com/P3chys/exchange-api/internal/config"
	"github.com/P3chys/exchange-api/internal/database"
	"github.com/P3chys/exchange-api/internal/importer"
	"github.com/P3chys/exchange-api/internal/logger"
	"github.com/P3chys/exchange-api/internal/repository"
	"github.com/P3chys/exchange-api/internal/services"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "programs.yaml", "YAML catalog of exchange programs")
	actor := flag.Int("actor", 0, "user id recorded as the publisher")
	flag.Parse()

	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.Must(cfg.LogLevel, cfg.GinMode)
	defer log.Sync()

	if envErr != nil {
		log.Debug("no .env file found")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal("failed to open catalog", zap.String("file", *file), zap.Error(err))
	}
	defer f.Close()

	catalog, err := importer.Load(f)
	if err != nil {
		log.Fatal("failed to read catalog", zap.Error(err))
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.GinMode, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	programs := repository.NewExchangeProgramRepository(db)
	applications := repository.NewApplicationRepository(db)
	users := repository.NewUserRepository(db)

	existing, err := programs.GetAll(ctx)
	if err != nil {
		log.Fatal("failed to load existing programs", zap.Error(err))
	}

	service := services.NewExchangeProgramService(
		programs,
		applications,
		repository.NewSequenceAllocator(db),
		services.NewIdentityResolver(users),
		services.NewSearchService(cfg, log),
		services.NewActivityService(db),
		log,
	)

	result := importer.Import(ctx, service, *actor, catalog, existing, log)
	log.Info("import completed",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	if result.Failed > 0 {
		os.Exit(1)
	}
}
