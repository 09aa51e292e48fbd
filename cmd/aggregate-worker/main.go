package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/vidscribe-ai/platform/pkg/aggregate"
	"github.com/vidscribe-ai/platform/pkg/common/config"
	"github.com/vidscribe-ai/platform/pkg/common/database"
	"github.com/vidscribe-ai/platform/pkg/common/logger"
	"github.com/vidscribe-ai/platform/pkg/jobstore"
	"github.com/vidscribe-ai/platform/pkg/scoring"
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

	cache := database.GetRedis()
	defer database.CloseRedis()

	repo := jobstore.NewRepository(db)
	ranking := scoring.NewRankingEngine(db, repo, cfg.RankingWindow, cfg.RankingSize)

	agg := aggregate.NewAggregator(db, cache, ranking, repo, cfg.CacheTTL)
	if err := agg.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Migration failed")
	}
	if err := agg.Run(ctx); err != nil {
		logger.Log.WithError(err).Fatal("Aggregation run failed")
	}
}
