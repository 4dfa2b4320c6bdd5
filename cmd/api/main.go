package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saturnino-fabrica-de-software/facepk/internal/api"
	"github.com/saturnino-fabrica-de-software/facepk/internal/config"
	"github.com/saturnino-fabrica-de-software/facepk/internal/database"
	"github.com/saturnino-fabrica-de-software/facepk/internal/dataset"
	"github.com/saturnino-fabrica-de-software/facepk/internal/face"
	"github.com/saturnino-fabrica-de-software/facepk/internal/matcher"
	"github.com/saturnino-fabrica-de-software/facepk/internal/repository"
	"github.com/saturnino-fabrica-de-software/facepk/internal/service"
	"github.com/saturnino-fabrica-de-software/facepk/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting facepk",
		slog.String("environment", cfg.Environment),
		slog.String("recognizer", cfg.Recognizer),
		slog.String("photos", cfg.PhotoFolder),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("failed to load members: %w", err)
	}
	if err := dataset.EnsureDirs(cfg.PhotoFolder, registry); err != nil {
		return err
	}

	trainer, err := face.NewTrainer(cfg)
	if err != nil {
		return err
	}

	handle := matcher.NewHandle(trainer, registry, cfg.PhotoFolder, logger)
	if model, err := handle.Reload(ctx); err != nil {
		// Keep serving: /ready stays 503 and POST /v1/dataset/reload can retry
		logger.Warn("initial training failed", slog.Any("error", err))
	} else if !model.Trained() {
		logger.Warn("no reference photos found, every round will be a no-match",
			slog.String("photos", cfg.PhotoFolder),
		)
	}

	var rounds service.RoundRepositoryInterface
	if cfg.HistoryEnabled() {
		if cfg.AutoMigrate {
			dbName, err := database.DatabaseName(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := database.MigrateUp(ctx, cfg.DatabaseURL, dbName); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			logger.Info("migrations applied")
		}

		pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return err
		}
		defer pool.Close()

		rounds = repository.NewRoundRepository(pool)
		logger.Info("round history enabled")
	}

	live := ws.NewHub()
	game := service.NewGameService(handle, rounds, logger).
		WithThreshold(cfg.Threshold(trainer.DefaultThreshold())).
		WithLanguage(cfg.Language).
		WithImportDir(cfg.ImportDir).
		WithEvents(live)

	router := api.NewRouter(logger, &api.Dependencies{
		Game:               game,
		MaxUploadMB:        cfg.MaxUploadMB,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Live:               live,
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := cfg.ListenAddr()
		logger.Info("server listening",
			slog.String("addr", addr),
			slog.Float64("threshold", game.Threshold()),
		)
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	done := make(chan error, 1)
	go func() { done <- router.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	case <-shutdownCtx.Done():
		logger.Error("shutdown timed out")
	}

	logger.Info("server stopped")
	return nil
}
