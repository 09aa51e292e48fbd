package jobstore

import (
	"context"
	"time"

	"github.com/vidscribe-ai/platform/pkg/common/models"
	"gorm.io/gorm/clause"
)

// UpsertAccount attributes an account sighting: username and collection
// bookkeeping are refreshed, tier fields are left to the scoring engine.
func (r *Repository) UpsertAccount(ctx context.Context, ownerID, username, scrapeStatus string, newestPostedAt *time.Time) error {
	now := time.Now().UTC()
	row := accountModel{
		OwnerID:         ownerID,
		Username:        username,
		Tier:            models.TierWatch,
		NewestPostedAt:  newestPostedAt,
		LastCollectedAt: &now,
		ScrapeStatus:    scrapeStatus,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "newest_posted_at", "last_collected_at", "scrape_status", "updated_at",
		}),
	}).Create(&row).Error
}

// DueAccounts returns the accounts most overdue for collection. Snoozed
// accounts are skipped until their cooldown elapses; disabled accounts
// never come back.
func (r *Repository) DueAccounts(ctx context.Context, limit int) ([]models.Account, error) {
	if limit <= 0 {
		limit = 3
	}
	var rows []accountModel
	err := r.db.WithContext(ctx).
		Where("scrape_status <> ?", models.ScrapeDisabled).
		Where("tier <> ? OR snooze_until IS NULL OR snooze_until < ?", models.TierSnoozed, time.Now().UTC()).
		Order("last_collected_at ASC NULLS FIRST").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	accounts := make([]models.Account, 0, len(rows))
	for i := range rows {
		accounts = append(accounts, rows[i].toDomain())
	}
	return accounts, nil
}

// UpdateAccountTier writes the scoring engine's decision. snooze_until is
// cleared unless the new tier is snoozed.
func (r *Repository) UpdateAccountTier(ctx context.Context, ownerID, tier string, snoozeUntil *time.Time, avgPlay, avgView float64) error {
	if tier != models.TierSnoozed {
		snoozeUntil = nil
	}
	return r.db.WithContext(ctx).Model(&accountModel{}).
		Where("owner_id = ?", ownerID).
		Updates(map[string]interface{}{
			"tier":            tier,
			"snooze_until":    snoozeUntil,
			"avg_play_last20": avgPlay,
			"avg_view_last20": avgView,
			"updated_at":      time.Now().UTC(),
		}).Error
}

func (r *Repository) AllAccounts(ctx context.Context) ([]models.Account, error) {
	var rows []accountModel
	if err := r.db.WithContext(ctx).Order("owner_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	accounts := make([]models.Account, 0, len(rows))
	for i := range rows {
		accounts = append(accounts, rows[i].toDomain())
	}
	return accounts, nil
}

// RecentMetrics returns the newest n post snapshots for one owner,
// ordered by post time descending. post_metrics holds one row per post,
// so this is already "latest snapshot per post".
func (r *Repository) RecentMetrics(ctx context.Context, ownerID string, n int) ([]models.PostMetric, error) {
	if n <= 0 {
		n = 20
	}
	var rows []postMetricModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("posted_at DESC").
		Limit(n).
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

// MetricsSince returns all snapshots with posted_at inside the trailing
// window, for the ranking rebuild.
func (r *Repository) MetricsSince(ctx context.Context, since time.Time) ([]models.PostMetric, error) {
	var rows []postMetricModel
	err := r.db.WithContext(ctx).
		Where("posted_at >= ?", since).
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
