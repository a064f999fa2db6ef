package main

import (
	"context"
	"time"

	"github.com/P3chys/exchange-api/internal/config"
	"github.com/P3chys/exchange-api/internal/database"
	"github.com/P3chys/exchange-api/internal/logger"
	"github.com/P3chys/exchange-api/internal/repository"
	"github.com/P3chys/exchange-api/internal/services"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const batchSize = 100

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

	search := services.NewSearchService(cfg, log)

	programs, err := repository.NewExchangeProgramRepository(db).GetLive(context.Background())
	if err != nil {
		log.Fatal("failed to load exchange programs", zap.Error(err))
	}

	indexedCount, err := search.GetProgramCount()
	if err != nil {
		log.Fatal("failed to get program count from meilisearch", zap.Error(err))
	}
	log.Info("starting reindex", zap.Int("live_programs", len(programs)), zap.Int64("indexed", indexedCount))

	total := 0
	for start := 0; start < len(programs); start += batchSize {
		end := start + batchSize
		if end > len(programs) {
			end = len(programs)
		}

		if err := search.IndexPrograms(programs[start:end]); err != nil {
			log.Warn("failed to index batch", zap.Int("offset", start), zap.Error(err))
			continue
		}
		total += end - start
		log.Info("indexed batch", zap.Int("batch", end-start), zap.Int("total", total))

		time.Sleep(100 * time.Millisecond) // Be nice to Meilisearch
	}

	log.Info("reindexing completed", zap.Int("indexed", total))
}
