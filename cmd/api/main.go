package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalogimport/internal/api"
	"catalogimport/internal/config"
	"catalogimport/internal/database"
	"catalogimport/internal/logger"
	"catalogimport/internal/services/progress"
	"catalogimport/internal/services/queue"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel, cfg.Env)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Fatal("Failed to create upload dir: %v", err)
	}

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	publisher := queue.NewPublisher(cfg.KafkaBrokers, cfg.ImportTopic)
	defer publisher.Close()

	deps := api.Dependencies{
		DB:        db.DB,
		Jobs:      database.NewJobStore(db.DB),
		Publisher: publisher,
	}

	if cfg.RedisURL != "" {
		client, err := progress.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Warn("Live progress disabled: %v", err)
		} else {
			defer client.Close()
			deps.Live = progress.NewReader(client)
		}
	}

	// Initialize API server
	server := api.New(cfg, logger, deps)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}
