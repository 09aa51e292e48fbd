package jobstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vidscribe-ai/platform/pkg/common/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "jobs.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	repo := NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return repo
}

func seedJob(t *testing.T, repo *Repository, code string, status models.Status, updatedAt time.Time) {
	t.Helper()
	row := jobModel{
		Code:      code,
		Status:    string(status),
		AudioURL:  "https://cdn.example.com/" + code + ".mp3",
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	if err := repo.db.Create(&row).Error; err != nil {
		t.Fatalf("seed job %s: %v", code, err)
	}
}

func mustGetJob(t *testing.T, repo *Repository, code string) models.Job {
	t.Helper()
	job, err := repo.GetJobByCode(context.Background(), code)
	if err != nil {
		t.Fatalf("get job %s: %v", code, err)
	}
	return job
}
