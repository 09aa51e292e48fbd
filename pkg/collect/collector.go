package collect

import (
	"context"
	"errors"
	"time"

	"github.com/vidscribe-ai/platform/pkg/common/logger"
	"github.com/vidscribe-ai/platform/pkg/common/models"
	"github.com/vidscribe-ai/platform/pkg/jobstore"
)

// EngagementRate derives the snapshot's engagement rate. Posts without
// views keep a NULL rate; downstream scoring excludes them rather than
// treating them as zero.
func EngagementRate(p models.CollectedPost) *float64 {
	if p.Views <= 0 {
		return nil
	}
	rate := float64(p.Likes+p.Comments) / float64(p.Views)
	return &rate
}

type ListClient interface {
	ListPosts(ctx context.Context, username string, limit int) ([]models.CollectedPost, error)
}

type Store interface {
	DueAccounts(ctx context.Context, limit int) ([]models.Account, error)
	ApplyCollection(ctx context.Context, engagementRate func(models.CollectedPost) *float64, posts []models.CollectedPost) (jobstore.CollectionResult, error)
	UpsertAccount(ctx context.Context, ownerID, username, scrapeStatus string, newestPostedAt *time.Time) error
}

type Summary struct {
	Accounts    int
	Posts       int
	JobsCreated int
	Failed      int
	Disabled    int
}

// Collector re-collects the accounts most overdue for a refresh. One
// account's failure does not abort the rest of the batch.
type Collector struct {
	client    ListClient
	store     Store
	postLimit int
}

func NewCollector(client ListClient, store Store, postLimit int) *Collector {
	if postLimit <= 0 {
		postLimit = 30
	}
	return &Collector{client: client, store: store, postLimit: postLimit}
}

func (c *Collector) Run(ctx context.Context, accountLimit int) (Summary, error) {
	var summary Summary

	accounts, err := c.store.DueAccounts(ctx, accountLimit)
	if err != nil {
		return summary, err
	}

	for _, account := range accounts {
		summary.Accounts++
		if err := c.collectAccount(ctx, account, &summary); err != nil {
			summary.Failed++
			logger.WithStage("collect").WithError(err).WithField("owner_id", account.OwnerID).Error("Collection failed")
		}
	}

	logger.WithStage("collect").WithFields(map[string]interface{}{
		"accounts":     summary.Accounts,
		"posts":        summary.Posts,
		"jobs_created": summary.JobsCreated,
		"failed":       summary.Failed,
		"disabled":     summary.Disabled,
	}).Info("Batch complete")

	return summary, nil
}

func (c *Collector) collectAccount(ctx context.Context, account models.Account, summary *Summary) error {
	posts, err := c.client.ListPosts(ctx, account.Username, c.postLimit)
	if errors.Is(err, ErrProfileDisabled) {
		summary.Disabled++
		return c.store.UpsertAccount(ctx, account.OwnerID, account.Username, models.ScrapeDisabled, account.NewestPostedAt)
	}
	if err != nil {
		return err
	}

	if len(posts) == 0 {
		return c.store.UpsertAccount(ctx, account.OwnerID, account.Username, models.ScrapeNoItems, account.NewestPostedAt)
	}

	result, err := c.store.ApplyCollection(ctx, EngagementRate, posts)
	if err != nil {
		return err
	}
	summary.Posts += result.Posts
	summary.JobsCreated += result.JobsCreated

	newest := newestPostedAt(posts)
	return c.store.UpsertAccount(ctx, account.OwnerID, account.Username, models.ScrapeActive, newest)
}

func newestPostedAt(posts []models.CollectedPost) *time.Time {
	var newest time.Time
	for _, p := range posts {
		if p.PostedAt.After(newest) {
			newest = p.PostedAt
		}
	}
	if newest.IsZero() {
		return nil
	}
	return &newest
}
