package jobstore

import (
	"context"
	"time"

	"github.com/vidscribe-ai/platform/pkg/common/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Claim atomically pops up to limit eligible jobs for exclusive
// processing. SKIP LOCKED makes concurrent claimers pass over rows a
// sibling already holds instead of blocking, so the sets returned to
// concurrent invocations are disjoint. Rows come back oldest first;
// updated_at is refreshed at claim time so staleness detection stays
// meaningful.
func (r *Repository) Claim(ctx context.Context, stage StageSpec, limit int) ([]models.Job, error) {
	if limit <= 0 {
		limit = 10
	}

	var claimed []models.Job
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []jobModel
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(stage.Eligible, stage.Args...).
			Order("updated_at ASC").
			Limit(limit).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		now := time.Now().UTC()
		codes := make([]string, 0, len(rows))
		for i := range rows {
			codes = append(codes, rows[i].Code)
		}
		if err := tx.Model(&jobModel{}).
			Where("code IN ?", codes).
			Updates(map[string]interface{}{
				"status":     string(stage.InProgress),
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		claimed = make([]models.Job, 0, len(rows))
		for i := range rows {
			rows[i].Status = string(stage.InProgress)
			rows[i].UpdatedAt = now
			claimed = append(claimed, rows[i].toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}
