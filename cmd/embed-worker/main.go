package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/vidscribe-ai/platform/pkg/common/config"
	"github.com/vidscribe-ai/platform/pkg/common/database"
	"github.com/vidscribe-ai/platform/pkg/common/logger"
	"github.com/vidscribe-ai/platform/pkg/embedding"
	"github.com/vidscribe-ai/platform/pkg/jobstore"
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

	jobs := jobstore.NewRepository(db)
	chunks := embedding.NewRepository(db)
	if err := chunks.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Migration failed")
	}

	embedder, err := embedding.NewGeminiEmbedder(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize embedder")
	}

	indexer := embedding.NewIndexer(jobs, chunks, embedder, cfg.EmbedBatchSize, cfg.ChunkMaxRunes, cfg.ChunkOverlapRunes)
	if _, err := indexer.Run(ctx); err != nil {
		logger.Log.WithError(err).Fatal("Indexer run failed")
	}
}
