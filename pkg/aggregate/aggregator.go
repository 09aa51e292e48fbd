package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vidscribe-ai/platform/pkg/common/logger"
	"github.com/vidscribe-ai/platform/pkg/common/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type ownerStatsModel struct {
	OwnerID           string    `gorm:"primaryKey;column:owner_id"`
	Posts             int64     `gorm:"column:posts"`
	TotalLikes        int64     `gorm:"column:total_likes"`
	TotalViews        int64     `gorm:"column:total_views"`
	TotalPlays        int64     `gorm:"column:total_plays"`
	AvgEngagementRate *float64  `gorm:"column:avg_engagement_rate"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (ownerStatsModel) TableName() string { return "owner_stats" }

type monthlyStatsModel struct {
	Month      string    `gorm:"primaryKey;column:month"` // YYYY-MM
	Posts      int64     `gorm:"column:posts"`
	TotalLikes int64     `gorm:"column:total_likes"`
	TotalViews int64     `gorm:"column:total_views"`
	TotalPlays int64     `gorm:"column:total_plays"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (monthlyStatsModel) TableName() string { return "monthly_stats" }

const searchViewName = "post_search_view"

const searchViewDDL = `
        CREATE MATERIALIZED VIEW IF NOT EXISTS ` + searchViewName + ` AS
        SELECT j.code,
               j.owner_id,
               j.transcript_text,
               j.transcript_ja,
               m.likes,
               m.views,
               m.plays,
               m.engagement_rate,
               m.posted_at
        FROM jobs j
        JOIN post_metrics m ON m.code = j.code`

// REFRESH ... CONCURRENTLY requires a unique index on the view.
const searchViewIndexDDL = `
        CREATE UNIQUE INDEX IF NOT EXISTS post_search_view_code_idx
        ON ` + searchViewName + ` (code)`

type TrendingSource interface {
	TopTrending(ctx context.Context, limit int) ([]models.TrendingPost, error)
}

type AccountSource interface {
	AllAccounts(ctx context.Context) ([]models.Account, error)
}

// Aggregator recomputes the read-optimized summaries. All four steps are
// independent and idempotent, so they run concurrently and a rerun
// converges on the same state.
type Aggregator struct {
	db       *gorm.DB
	cache    *redis.Client
	trending TrendingSource
	accounts AccountSource
	cacheTTL time.Duration
}

func NewAggregator(db *gorm.DB, cache *redis.Client, trending TrendingSource, accounts AccountSource, cacheTTL time.Duration) *Aggregator {
	return &Aggregator{db: db, cache: cache, trending: trending, accounts: accounts, cacheTTL: cacheTTL}
}

func (a *Aggregator) AutoMigrate() error {
	if err := a.db.AutoMigrate(&ownerStatsModel{}, &monthlyStatsModel{}); err != nil {
		return err
	}
	if err := a.db.Exec(searchViewDDL).Error; err != nil {
		return fmt.Errorf("create search view: %w", err)
	}
	if err := a.db.Exec(searchViewIndexDDL).Error; err != nil {
		return fmt.Errorf("index search view: %w", err)
	}
	return nil
}

func (a *Aggregator) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.rebuildOwnerStats(gctx) })
	g.Go(func() error { return a.rebuildMonthlyStats(gctx) })
	g.Go(func() error { return a.refreshSearchView(gctx) })
	g.Go(func() error { return a.refreshCache(gctx) })

	if err := g.Wait(); err != nil {
		return err
	}
	logger.WithStage("aggregate").Info("Aggregation complete")
	return nil
}

func (a *Aggregator) rebuildOwnerStats(ctx context.Context) error {
	err := a.db.WithContext(ctx).Exec(`
        INSERT INTO owner_stats (owner_id, posts, total_likes, total_views, total_plays, avg_engagement_rate, updated_at)
        SELECT owner_id, COUNT(*), COALESCE(SUM(likes), 0), COALESCE(SUM(views), 0), COALESCE(SUM(plays), 0), AVG(engagement_rate), NOW()
        FROM post_metrics
        GROUP BY owner_id
        ON CONFLICT (owner_id) DO UPDATE SET
            posts = EXCLUDED.posts,
            total_likes = EXCLUDED.total_likes,
            total_views = EXCLUDED.total_views,
            total_plays = EXCLUDED.total_plays,
            avg_engagement_rate = EXCLUDED.avg_engagement_rate,
            updated_at = EXCLUDED.updated_at`).Error
	if err != nil {
		return fmt.Errorf("rebuild owner stats: %w", err)
	}
	return nil
}

func (a *Aggregator) rebuildMonthlyStats(ctx context.Context) error {
	err := a.db.WithContext(ctx).Exec(`
        INSERT INTO monthly_stats (month, posts, total_likes, total_views, total_plays, updated_at)
        SELECT to_char(posted_at, 'YYYY-MM'), COUNT(*), COALESCE(SUM(likes), 0), COALESCE(SUM(views), 0), COALESCE(SUM(plays), 0), NOW()
        FROM post_metrics
        GROUP BY to_char(posted_at, 'YYYY-MM')
        ON CONFLICT (month) DO UPDATE SET
            posts = EXCLUDED.posts,
            total_likes = EXCLUDED.total_likes,
            total_views = EXCLUDED.total_views,
            total_plays = EXCLUDED.total_plays,
            updated_at = EXCLUDED.updated_at`).Error
	if err != nil {
		return fmt.Errorf("rebuild monthly stats: %w", err)
	}
	return nil
}

func (a *Aggregator) refreshSearchView(ctx context.Context) error {
	err := a.db.WithContext(ctx).Exec(searchViewRefresh()).Error
	if err != nil {
		return fmt.Errorf("refresh search view: %w", err)
	}
	return nil
}

func searchViewRefresh() string {
	return "REFRESH MATERIALIZED VIEW CONCURRENTLY " + searchViewName
}

// refreshCache pushes the read views the dashboard serves from Redis so
// it never queries the job store directly.
func (a *Aggregator) refreshCache(ctx context.Context) error {
	trending, err := a.trending.TopTrending(ctx, 50)
	if err != nil {
		return fmt.Errorf("load trending for cache: %w", err)
	}
	payload, err := json.Marshal(trending)
	if err != nil {
		return err
	}
	if err := a.cache.Set(ctx, "trending:latest", payload, a.cacheTTL).Err(); err != nil {
		return fmt.Errorf("cache trending: %w", err)
	}

	accounts, err := a.accounts.AllAccounts(ctx)
	if err != nil {
		return fmt.Errorf("load accounts for cache: %w", err)
	}
	for _, account := range accounts {
		data, err := json.Marshal(account)
		if err != nil {
			return err
		}
		key := "account:" + account.OwnerID
		if err := a.cache.Set(ctx, key, data, a.cacheTTL).Err(); err != nil {
			return fmt.Errorf("cache account %s: %w", account.OwnerID, err)
		}
	}
	return nil
}
