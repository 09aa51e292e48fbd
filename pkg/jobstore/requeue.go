package jobstore

import (
	"context"
	"fmt"
	"time"
)

// RequeueStalled reverts jobs stuck in a stage's in-progress status past
// the timeout. A worker that claimed work and died leaves its rows here;
// the staleness timeout is the only liveness mechanism.
func (r *Repository) RequeueStalled(ctx context.Context, stage StageSpec, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result := r.db.WithContext(ctx).Model(&jobModel{}).
		Where("status = ? AND updated_at < ?", string(stage.InProgress), cutoff).
		Updates(map[string]interface{}{
			"status":        string(stage.Revert),
			"updated_at":    time.Now().UTC(),
			"error_message": fmt.Sprintf("stalled: %s exceeded %s", stage.Name, olderThan),
		})
	return result.RowsAffected, result.Error
}
