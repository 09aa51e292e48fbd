package scoring

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/vidscribe-ai/platform/pkg/common/logger"
	"github.com/vidscribe-ai/platform/pkg/common/models"
	"gorm.io/gorm"
)

// Score implements engagement_rate * log(views+1) * sqrt(likes). Callers
// must pre-filter posts with zero likes, zero views, or a NULL rate; the
// exclusion keeps degenerate posts out of the table instead of scoring
// them zero.
func Score(likes, views int64, engagementRate float64) float64 {
	return engagementRate * math.Log(float64(views)+1) * math.Sqrt(float64(likes))
}

type trendingModel struct {
	Rank           int       `gorm:"primaryKey;column:rank"`
	Code           string    `gorm:"column:code;index"`
	OwnerID        string    `gorm:"column:owner_id"`
	Likes          int64     `gorm:"column:likes"`
	Views          int64     `gorm:"column:views"`
	EngagementRate float64   `gorm:"column:engagement_rate"`
	TotalScore     float64   `gorm:"column:total_score"`
	PostedAt       time.Time `gorm:"column:posted_at"`
	ComputedAt     time.Time `gorm:"column:computed_at"`
}

func (trendingModel) TableName() string { return "trending_posts" }

type MetricSource interface {
	MetricsSince(ctx context.Context, since time.Time) ([]models.PostMetric, error)
}

type RankingSummary struct {
	Considered int
	Ranked     int
}

// RankingEngine rebuilds the trending table from scratch on every run:
// quantify the trailing window, sort, delete everything, insert the new
// snapshot. No partial updates, no stale rows.
type RankingEngine struct {
	db      *gorm.DB
	metrics MetricSource
	window  time.Duration
	size    int
}

func NewRankingEngine(db *gorm.DB, metrics MetricSource, window time.Duration, size int) *RankingEngine {
	if size <= 0 {
		size = 100
	}
	return &RankingEngine{db: db, metrics: metrics, window: window, size: size}
}

func (e *RankingEngine) AutoMigrate() error {
	return e.db.AutoMigrate(&trendingModel{})
}

func (e *RankingEngine) Run(ctx context.Context) (RankingSummary, error) {
	var summary RankingSummary

	since := time.Now().UTC().Add(-e.window)
	metrics, err := e.metrics.MetricsSince(ctx, since)
	if err != nil {
		return summary, err
	}
	summary.Considered = len(metrics)

	entries := RankPosts(metrics, e.size)
	summary.Ranked = len(entries)

	now := time.Now().UTC()
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM trending_posts").Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		rows := make([]trendingModel, 0, len(entries))
		for _, entry := range entries {
			rows = append(rows, trendingModel{
				Rank:           entry.Rank,
				Code:           entry.Code,
				OwnerID:        entry.OwnerID,
				Likes:          entry.Likes,
				Views:          entry.Views,
				EngagementRate: entry.EngagementRate,
				TotalScore:     entry.TotalScore,
				PostedAt:       entry.PostedAt,
				ComputedAt:     now,
			})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return summary, err
	}

	logger.WithStage("ranking").WithFields(map[string]interface{}{
		"considered": summary.Considered,
		"ranked":     summary.Ranked,
	}).Info("Ranking rebuilt")

	return summary, nil
}

// RankPosts scores and orders the qualifying snapshots. Posts with zero
// likes, zero views, or no engagement rate are excluded entirely.
func RankPosts(metrics []models.PostMetric, size int) []models.TrendingPost {
	var entries []models.TrendingPost
	for _, m := range metrics {
		if m.Likes <= 0 || m.Views <= 0 || m.EngagementRate == nil {
			continue
		}
		entries = append(entries, models.TrendingPost{
			Code:           m.Code,
			OwnerID:        m.OwnerID,
			Likes:          m.Likes,
			Views:          m.Views,
			EngagementRate: *m.EngagementRate,
			TotalScore:     Score(m.Likes, m.Views, *m.EngagementRate),
			PostedAt:       m.PostedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TotalScore > entries[j].TotalScore
	})
	if len(entries) > size {
		entries = entries[:size]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// TopTrending serves the read-side collaborators and the cache refresh.
func (e *RankingEngine) TopTrending(ctx context.Context, limit int) ([]models.TrendingPost, error) {
	if limit <= 0 || limit > e.size {
		limit = e.size
	}
	var rows []trendingModel
	if err := e.db.WithContext(ctx).Order("rank ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]models.TrendingPost, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.TrendingPost{
			Rank:           row.Rank,
			Code:           row.Code,
			OwnerID:        row.OwnerID,
			Likes:          row.Likes,
			Views:          row.Views,
			EngagementRate: row.EngagementRate,
			TotalScore:     row.TotalScore,
			PostedAt:       row.PostedAt,
		})
	}
	return entries, nil
}
