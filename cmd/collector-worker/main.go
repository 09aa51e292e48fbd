package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/vidscribe-ai/platform/pkg/collect"
	"github.com/vidscribe-ai/platform/pkg/common/config"
	"github.com/vidscribe-ai/platform/pkg/common/database"
	"github.com/vidscribe-ai/platform/pkg/common/logger"
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

	repo := jobstore.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Migration failed")
	}

	collector := collect.NewCollector(collect.NewClient(cfg), repo, cfg.CollectPostLimit)
	if _, err := collector.Run(ctx, cfg.CollectLimit); err != nil {
		logger.Log.WithError(err).Fatal("Collector run failed")
	}
}
