package jobstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vidscribe-ai/platform/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollectionResult summarizes one ApplyCollection call.
type CollectionResult struct {
	Posts       int
	JobsCreated int
	JobsUpdated int
}

// refreshableStatus reports whether a collection run may still rewrite a
// job's discovery fields. Once a job advances past the early statuses the
// pipeline owns it.
func refreshableStatus(s models.Status) bool {
	return s == models.StatusQueued || s == models.StatusAwaitingAudioURL
}

func refreshableStatuses() []string {
	return []string{string(models.StatusQueued), string(models.StatusAwaitingAudioURL)}
}

// ApplyCollection performs the combined upsert for one batch of listed
// posts: raw history row, metric snapshot, and conditional job creation,
// all in one transaction so a metric never exists without its job.
// Running it twice with the same payload converges on the same state.
func (r *Repository) ApplyCollection(ctx context.Context, engagementRate func(p models.CollectedPost) *float64, posts []models.CollectedPost) (CollectionResult, error) {
	var res CollectionResult
	if len(posts) == 0 {
		return res, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, post := range posts {
			history := postHistoryModel{
				ID:        uuid.New(),
				Code:      post.Code,
				OwnerID:   post.OwnerID,
				Payload:   datatypes.JSON(post.Raw),
				FetchedAt: now,
			}
			if err := tx.Create(&history).Error; err != nil {
				return err
			}

			metric := postMetricModel{
				Code:           post.Code,
				OwnerID:        post.OwnerID,
				Likes:          post.Likes,
				Comments:       post.Comments,
				Views:          post.Views,
				Plays:          post.Plays,
				EngagementRate: engagementRate(post),
				PostedAt:       post.PostedAt,
				FetchedAt:      now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"owner_id", "likes", "comments", "views", "plays",
					"engagement_rate", "posted_at", "fetched_at",
				}),
			}).Create(&metric).Error; err != nil {
				return err
			}

			created, updated, err := upsertJobForPost(tx, post, now)
			if err != nil {
				return err
			}
			if created {
				res.JobsCreated++
			}
			if updated {
				res.JobsUpdated++
			}
			res.Posts++
		}
		return nil
	})
	return res, err
}

func upsertJobForPost(tx *gorm.DB, post models.CollectedPost, now time.Time) (created, updated bool, err error) {
	status := models.StatusAwaitingAudioURL
	if post.AudioURL != "" {
		status = models.StatusQueued
	}
	owner := post.OwnerID
	row := jobModel{
		Code:      post.Code,
		OwnerID:   &owner,
		Status:    string(status),
		AudioURL:  post.AudioURL,
		VideoURL:  post.VideoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, false, nil
	}

	// Existing job. A waiting job whose audio URL turned up is promoted
	// through the transition guard; a job the pipeline already owns loses
	// the guard and is left alone.
	if post.AudioURL != "" {
		if err := promoteAwaiting(tx, post.Code, post.AudioURL); err != nil && !errors.Is(err, ErrIllegalTransition) {
			return false, false, err
		}
	}

	updates := map[string]interface{}{
		"owner_id":   &owner,
		"updated_at": now,
	}
	if post.AudioURL != "" {
		updates["audio_url"] = post.AudioURL
	}
	if post.VideoURL != "" {
		updates["video_url"] = post.VideoURL
	}
	result = tx.Model(&jobModel{}).
		Where("code = ? AND status IN ?", post.Code, refreshableStatuses()).
		Updates(updates)
	if result.Error != nil {
		return false, false, result.Error
	}
	return false, result.RowsAffected > 0, nil
}
