package main

import (
	"context"

	"github.com/joho/godotenv"
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

	thresholds, err := scoring.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load scoring thresholds")
	}

	repo := jobstore.NewRepository(db)
	tiers := scoring.NewTierEngine(repo, thresholds)
	if _, err := tiers.Run(ctx); err != nil {
		logger.Log.WithError(err).Fatal("Tier recomputation failed")
	}

	ranking := scoring.NewRankingEngine(db, repo, cfg.RankingWindow, cfg.RankingSize)
	if err := ranking.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Migration failed")
	}
	if _, err := ranking.Run(ctx); err != nil {
		logger.Log.WithError(err).Fatal("Ranking rebuild failed")
	}
}
