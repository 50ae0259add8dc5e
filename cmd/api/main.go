package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/yt-export/internal/api"
	"github.com/yt-export/internal/config"
	"github.com/yt-export/internal/export"
	"github.com/yt-export/internal/logger"
	"github.com/yt-export/internal/models"
	"github.com/yt-export/internal/pipeline"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := zap.S()
	defer logger.Sync()

	youtubeClient, err := api.NewYouTubeClient(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize YouTube client: %v", err)
	}

	var recorder pipeline.Recorder
	var history api.History
	if cfg.HistoryEnabled() {
		db, err := models.NewDatabase(cfg.DBPath, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		recorder, history = db, db
	}

	runner := pipeline.New(youtubeClient, export.NewExporter(cfg.DownloadDir), recorder, logger)
	server := api.NewServer(runner, history, logger)

	if err := server.Start(cfg.Port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
