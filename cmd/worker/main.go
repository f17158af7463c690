package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"catalogimport/internal/config"
	"catalogimport/internal/database"
	"catalogimport/internal/logger"
	"catalogimport/internal/services/progress"
	"catalogimport/internal/services/storage"
	"catalogimport/internal/worker"
	"catalogimport/internal/worker/processors"
	"catalogimport/internal/worker/processors/catalog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel, cfg.Env)
	ctx := context.Background()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	blobs, err := storage.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to set up blob storage: %v", err)
	}

	var sink catalog.ProgressSink = database.NewJobStore(db.DB)
	if cfg.RedisURL != "" {
		client, err := progress.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("Live progress disabled: %v", err)
		} else {
			defer client.Close()
			sink = progress.NewRedisSink(sink, client, logger)
		}
	}

	importer := catalog.New(database.NewCatalogStore(db.DB), blobs, sink, catalog.ImageOptions{
		BatchSize:      cfg.ImageBatchSize,
		ConnectTimeout: cfg.ImageConnectTimeout,
		ReadTimeout:    cfg.ImageReadTimeout,
		Denylist:       cfg.ImageDenylist,
	}, logger)

	// Initialize worker
	w := worker.New(cfg, logger, processors.NewEventProcessor(importer, logger))

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
