package jobstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/vidscribe-ai/platform/pkg/common/models"
	"gorm.io/datatypes"
)

type jobModel struct {
	Code           string     `gorm:"primaryKey;column:code"`
	OwnerID        *string    `gorm:"column:owner_id;index"`
	Status         string     `gorm:"column:status;index"`
	AudioURL       string     `gorm:"column:audio_url"`
	VideoURL       string     `gorm:"column:video_url"`
	BlobBucket     string     `gorm:"column:blob_bucket"`
	BlobKey        string     `gorm:"column:blob_key"`
	TranscriptText *string    `gorm:"column:transcript_text;type:text"`
	TranscriptJA   *string    `gorm:"column:transcript_ja;type:text"`
	ErrorMessage   string     `gorm:"column:error_message"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;index"`
	TranscribedAt  *time.Time `gorm:"column:transcribed_at"`
}

func (jobModel) TableName() string { return "jobs" }

func (m *jobModel) toDomain() models.Job {
	return models.Job{
		Code:           m.Code,
		OwnerID:        m.OwnerID,
		Status:         models.Status(m.Status),
		AudioURL:       m.AudioURL,
		VideoURL:       m.VideoURL,
		BlobBucket:     m.BlobBucket,
		BlobKey:        m.BlobKey,
		TranscriptText: m.TranscriptText,
		TranscriptJA:   m.TranscriptJA,
		ErrorMessage:   m.ErrorMessage,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		TranscribedAt:  m.TranscribedAt,
	}
}

type accountModel struct {
	OwnerID         string     `gorm:"primaryKey;column:owner_id"`
	Username        string     `gorm:"column:username;index"`
	Tier            string     `gorm:"column:tier;index"`
	SnoozeUntil     *time.Time `gorm:"column:snooze_until"`
	AvgPlayLast20   float64    `gorm:"column:avg_play_last20"`
	AvgViewLast20   float64    `gorm:"column:avg_view_last20"`
	NewestPostedAt  *time.Time `gorm:"column:newest_posted_at"`
	LastCollectedAt *time.Time `gorm:"column:last_collected_at;index"`
	ScrapeStatus    string     `gorm:"column:scrape_status"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (accountModel) TableName() string { return "accounts" }

func (m *accountModel) toDomain() models.Account {
	return models.Account{
		OwnerID:         m.OwnerID,
		Username:        m.Username,
		Tier:            m.Tier,
		SnoozeUntil:     m.SnoozeUntil,
		AvgPlayLast20:   m.AvgPlayLast20,
		AvgViewLast20:   m.AvgViewLast20,
		NewestPostedAt:  m.NewestPostedAt,
		LastCollectedAt: m.LastCollectedAt,
		ScrapeStatus:    m.ScrapeStatus,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

type postMetricModel struct {
	Code           string    `gorm:"primaryKey;column:code"`
	OwnerID        string    `gorm:"column:owner_id;index"`
	Likes          int64     `gorm:"column:likes"`
	Comments       int64     `gorm:"column:comments"`
	Views          int64     `gorm:"column:views"`
	Plays          int64     `gorm:"column:plays"`
	EngagementRate *float64  `gorm:"column:engagement_rate"`
	PostedAt       time.Time `gorm:"column:posted_at;index"`
	FetchedAt      time.Time `gorm:"column:fetched_at"`
}

func (postMetricModel) TableName() string { return "post_metrics" }

func (m *postMetricModel) toDomain() models.PostMetric {
	return models.PostMetric{
		Code:           m.Code,
		OwnerID:        m.OwnerID,
		Likes:          m.Likes,
		Comments:       m.Comments,
		Views:          m.Views,
		Plays:          m.Plays,
		EngagementRate: m.EngagementRate,
		PostedAt:       m.PostedAt,
		FetchedAt:      m.FetchedAt,
	}
}

// postHistoryModel keeps the raw listing payload of every collection run.
type postHistoryModel struct {
	ID        uuid.UUID      `gorm:"primaryKey;column:id"`
	Code      string         `gorm:"column:code;index"`
	OwnerID   string         `gorm:"column:owner_id;index"`
	Payload   datatypes.JSON `gorm:"column:payload"`
	FetchedAt time.Time      `gorm:"column:fetched_at"`
}

func (postHistoryModel) TableName() string { return "post_history" }
