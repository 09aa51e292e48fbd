package scoring

import (
	"context"
	"time"

	"github.com/vidscribe-ai/platform/pkg/common/logger"
	"github.com/vidscribe-ai/platform/pkg/common/models"
)

// ClassifyTier is a pure function of the trailing play counts: rerunning
// it with the same inputs yields the same tier. Accounts without enough
// signal are watched rather than snoozed.
func ClassifyTier(playCounts []int64, th Thresholds, now time.Time) (tier string, snoozeUntil *time.Time, avgPlays float64) {
	if len(playCounts) < th.MinQualifyingPosts {
		return models.TierWatch, nil, average(playCounts)
	}

	avgPlays = average(playCounts)
	switch {
	case avgPlays >= th.HighAvgPlays:
		return models.TierActive, nil, avgPlays
	case avgPlays >= th.LowAvgPlays:
		return models.TierWatch, nil, avgPlays
	default:
		until := now.Add(time.Duration(th.SnoozeCooldownDays) * 24 * time.Hour)
		return models.TierSnoozed, &until, avgPlays
	}
}

func average(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

type AccountStore interface {
	AllAccounts(ctx context.Context) ([]models.Account, error)
	RecentMetrics(ctx context.Context, ownerID string, n int) ([]models.PostMetric, error)
	UpdateAccountTier(ctx context.Context, ownerID, tier string, snoozeUntil *time.Time, avgPlay, avgView float64) error
}

type TierSummary struct {
	Accounts int
	Active   int
	Watch    int
	Snoozed  int
	Failed   int
}

// TierEngine recomputes every account's tier from its trailing post
// window. The recomputation is idempotent; running it twice changes
// nothing but snooze_until timestamps for accounts that stay snoozed.
type TierEngine struct {
	store AccountStore
	th    Thresholds
}

func NewTierEngine(store AccountStore, th Thresholds) *TierEngine {
	return &TierEngine{store: store, th: th}
}

func (e *TierEngine) Run(ctx context.Context) (TierSummary, error) {
	var summary TierSummary

	accounts, err := e.store.AllAccounts(ctx)
	if err != nil {
		return summary, err
	}

	now := time.Now().UTC()
	for _, account := range accounts {
		summary.Accounts++
		if err := e.scoreAccount(ctx, account, now, &summary); err != nil {
			summary.Failed++
			logger.WithStage("tiers").WithError(err).WithField("owner_id", account.OwnerID).Error("Tier update failed")
		}
	}

	logger.WithStage("tiers").WithFields(map[string]interface{}{
		"accounts": summary.Accounts,
		"active":   summary.Active,
		"watch":    summary.Watch,
		"snoozed":  summary.Snoozed,
		"failed":   summary.Failed,
	}).Info("Tier recomputation complete")

	return summary, nil
}

func (e *TierEngine) scoreAccount(ctx context.Context, account models.Account, now time.Time, summary *TierSummary) error {
	metrics, err := e.store.RecentMetrics(ctx, account.OwnerID, e.th.TrailingPosts)
	if err != nil {
		return err
	}

	plays := make([]int64, 0, len(metrics))
	views := make([]int64, 0, len(metrics))
	for _, m := range metrics {
		plays = append(plays, m.Plays)
		views = append(views, m.Views)
	}

	tier, snoozeUntil, avgPlays := ClassifyTier(plays, e.th, now)
	avgViews := average(views)

	switch tier {
	case models.TierActive:
		summary.Active++
	case models.TierWatch:
		summary.Watch++
	case models.TierSnoozed:
		summary.Snoozed++
	}

	return e.store.UpdateAccountTier(ctx, account.OwnerID, tier, snoozeUntil, avgPlays, avgViews)
}
