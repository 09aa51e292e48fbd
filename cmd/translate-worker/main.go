package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/vidscribe-ai/platform/pkg/common/config"
	"github.com/vidscribe-ai/platform/pkg/common/database"
	"github.com/vidscribe-ai/platform/pkg/common/logger"
	"github.com/vidscribe-ai/platform/pkg/jobstore"
	"github.com/vidscribe-ai/platform/pkg/pipeline"
	"github.com/vidscribe-ai/platform/pkg/translate"
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

	generator, err := translate.NewGenerator(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize text generation")
	}

	translator := translate.NewTranslator(generator, repo)
	runner := pipeline.NewRunner(repo, cfg.ClaimLimit, cfg.BatchParallelism, cfg.TranslateStallTimeout)
	if _, err := runner.Run(ctx, jobstore.StageTranslate, translator.Handle); err != nil {
		logger.Log.WithError(err).Fatal("Translate run failed")
	}
}
