package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/vidscribe-ai/platform/pkg/common/config"
	"github.com/vidscribe-ai/platform/pkg/common/database"
	"github.com/vidscribe-ai/platform/pkg/common/logger"
	"github.com/vidscribe-ai/platform/pkg/jobstore"
	"github.com/vidscribe-ai/platform/pkg/media"
	"github.com/vidscribe-ai/platform/pkg/pipeline"
)

func main() {
	_ = godotenv.Load()
	logger.Init()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to job store")
	}
	defer database.ClosePostgres()

	repo := jobstore.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Migration failed")
	}

	fetcher := media.NewFetcher(media.NewBlobStore(cfg), repo)
	runner := pipeline.NewRunner(repo, cfg.ClaimLimit, cfg.BatchParallelism, cfg.AudioStallTimeout)
	if _, err := runner.Run(ctx, jobstore.StageAudioFetch, fetcher.Handle); err != nil {
		logger.Log.WithError(err).Fatal("Audio fetch run failed")
	}
}
