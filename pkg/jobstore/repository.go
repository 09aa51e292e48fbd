package jobstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vidscribe-ai/platform/pkg/common/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrIllegalTransition = errors.New("jobstore: illegal status transition")
	ErrNotFound          = errors.New("jobstore: not found")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&jobModel{},
		&accountModel{},
		&postMetricModel{},
		&postHistoryModel{},
	)
}

// CreateJob registers a post on first sighting. Returns true when a new
// row was created; an existing job is left untouched.
func (r *Repository) CreateJob(ctx context.Context, code string, ownerID *string, audioURL, videoURL string) (bool, error) {
	now := time.Now().UTC()
	status := models.StatusAwaitingAudioURL
	if audioURL != "" {
		status = models.StatusQueued
	}
	row := jobModel{
		Code:      code,
		OwnerID:   ownerID,
		Status:    string(status),
		AudioURL:  audioURL,
		VideoURL:  videoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) GetJobByCode(ctx context.Context, code string) (models.Job, error) {
	var row jobModel
	err := r.db.WithContext(ctx).First(&row, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Job{}, ErrNotFound
	}
	if err != nil {
		return models.Job{}, err
	}
	return row.toDomain(), nil
}

// transition applies a guarded single-row status move. The WHERE clause
// carries the expected predecessor so a concurrent writer loses cleanly.
func (r *Repository) transition(ctx context.Context, code string, from, to models.Status, updates map[string]interface{}) error {
	return transitionOn(r.db.WithContext(ctx), code, from, to, updates)
}

// transitionOn is the tx-scoped core of transition, shared with the
// collection upsert so promotions inside its transaction go through the
// same guard.
func transitionOn(db *gorm.DB, code string, from, to models.Status, updates map[string]interface{}) error {
	if !models.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = string(to)
	updates["updated_at"] = time.Now().UTC()

	result := db.Model(&jobModel{}).
		Where("code = ? AND status = ?", code, string(from)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: job %s not in %s", ErrIllegalTransition, code, from)
	}
	return nil
}

// Revert sends a claimed job back to its stage's retryable status,
// recording what went wrong.
func (r *Repository) Revert(ctx context.Context, stage StageSpec, code string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if len(msg) > 1000 {
		msg = msg[:1000]
	}
	return r.transition(ctx, code, stage.InProgress, stage.Revert, map[string]interface{}{
		"error_message": msg,
	})
}

func (r *Repository) MarkAudioReady(ctx context.Context, code, bucket, key string) error {
	return r.transition(ctx, code, models.StatusAudioDownloading, models.StatusAudioReady, map[string]interface{}{
		"blob_bucket":   bucket,
		"blob_key":      key,
		"error_message": "",
	})
}

func (r *Repository) MarkTranscribed(ctx context.Context, code, text string) error {
	now := time.Now().UTC()
	return r.transition(ctx, code, models.StatusTranscribing, models.StatusTranscribed, map[string]interface{}{
		"transcript_text": text,
		"transcribed_at":  now,
		"error_message":   "",
	})
}

// MarkNoSpeech records the terminal outcome for audio with no detectable
// speech. Distinct from an error: the job is done, not retried.
func (r *Repository) MarkNoSpeech(ctx context.Context, code string) error {
	return r.transition(ctx, code, models.StatusTranscribing, models.StatusNoSpeech, map[string]interface{}{
		"error_message": "",
	})
}

// MarkTranslated completes the pipeline. A nil translation means the
// provider produced nothing usable; the job still completes with a NULL
// transcript_ja rather than looping.
func (r *Repository) MarkTranslated(ctx context.Context, code string, translation *string) error {
	return r.transition(ctx, code, models.StatusTranslating, models.StatusTranslated, map[string]interface{}{
		"transcript_ja": translation,
		"error_message": "",
	})
}

// PromoteAwaiting moves a waiting job back to queued once an audio URL
// turns up, either from a re-collection or a resubmission that carries
// the URL.
func (r *Repository) PromoteAwaiting(ctx context.Context, code, audioURL string) error {
	return promoteAwaiting(r.db.WithContext(ctx), code, audioURL)
}

func promoteAwaiting(db *gorm.DB, code, audioURL string) error {
	return transitionOn(db, code, models.StatusAwaitingAudioURL, models.StatusQueued, map[string]interface{}{
		"audio_url":     audioURL,
		"error_message": "",
	})
}

// TranscribedAfter pages transcribed jobs in (updated_at, code) order,
// strictly after the given cursor position.
func (r *Repository) TranscribedAfter(ctx context.Context, cur models.CursorPos, limit int) ([]models.Job, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []jobModel
	err := r.db.WithContext(ctx).
		Where("transcript_text IS NOT NULL AND (updated_at, code) > (?, ?)", cur.LastUpdatedAt, cur.LastCode).
		Order("updated_at ASC, code ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	jobs := make([]models.Job, 0, len(rows))
	for i := range rows {
		jobs = append(jobs, rows[i].toDomain())
	}
	return jobs, nil
}

var metricSortColumns = map[string]string{
	"posted_at":       "posted_at",
	"fetched_at":      "fetched_at",
	"likes":           "likes",
	"views":           "views",
	"plays":           "plays",
	"engagement_rate": "engagement_rate",
}

// ListMetricsByOwner serves the read-side collaborators; sort keys are
// whitelisted.
func (r *Repository) ListMetricsByOwner(ctx context.Context, ownerID, sortBy string, limit, offset int) ([]models.PostMetric, error) {
	column, ok := metricSortColumns[sortBy]
	if !ok {
		column = "posted_at"
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []postMetricModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order(column + " DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	metrics := make([]models.PostMetric, 0, len(rows))
	for i := range rows {
		metrics = append(metrics, rows[i].toDomain())
	}
	return metrics, nil
}

func (r *Repository) GetAccountSummary(ctx context.Context, ownerID string) (models.Account, error) {
	var row accountModel
	err := r.db.WithContext(ctx).First(&row, "owner_id = ?", ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, ErrNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	return row.toDomain(), nil
}
