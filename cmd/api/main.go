package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/P3chys/exchange-api/internal/config"
	"github.com/P3chys/exchange-api/internal/database"
	"github.com/P3chys/exchange-api/internal/handlers"
	"github.com/P3chys/exchange-api/internal/logger"
	"github.com/P3chys/exchange-api/internal/middleware"
	"github.com/P3chys/exchange-api/internal/repository"
	"github.com/P3chys/exchange-api/internal/router"
	"github.com/P3chys/exchange-api/internal/services"
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
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := database.SeedAdmin(db, cfg, log); err != nil {
		log.Fatal("failed to seed administrator", zap.Error(err))
	}

	users := repository.NewUserRepository(db)
	applications := repository.NewApplicationRepository(db)
	programs := repository.NewExchangeProgramRepository(db)
	ids := repository.NewSequenceAllocator(db)

	identity := services.NewIdentityResolver(users)
	activity := services.NewActivityService(db)
	search := services.NewSearchService(cfg, log)

	health := map[string]handlers.Pinger{"search": search}

	var storage handlers.DocumentStorage
	var objects services.ObjectRemover
	if s, err := services.NewStorageService(context.Background(), cfg); err != nil {
		log.Warn("object storage unavailable, document routes disabled", zap.Error(err))
	} else {
		storage, objects = s, s
		health["storage"] = s
	}

	rateLimiter, err := middleware.NewRateLimiter(cfg.RedisURL, cfg.RateLimitRequests, cfg.RateLimitWindow, log)
	if err != nil {
		log.Warn("redis unavailable, using in-process rate limits", zap.Error(err))
	} else {
		defer rateLimiter.Close()
		health["cache"] = rateLimiter
	}

	engine := router.Setup(router.Dependencies{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		Applications: services.NewApplicationService(applications, programs, ids, identity, activity, objects, log),
		Programs:     services.NewExchangeProgramService(programs, applications, ids, identity, search, activity, log),
		Users:        users,
		Activities:   activity,
		Storage:      storage,
		RateLimiter:  rateLimiter,
		Metrics:      middleware.NewMetrics(),
		Health:       health,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
