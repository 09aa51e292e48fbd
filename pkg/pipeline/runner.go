package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/vidscribe-ai/platform/pkg/common/logger"
	"github.com/vidscribe-ai/platform/pkg/common/models"
	"github.com/vidscribe-ai/platform/pkg/jobstore"
	"golang.org/x/sync/errgroup"
)

// Outcome is a per-item result for work that finished without error.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	// OutcomeTerminal marks a content decision (no speech, unusable
	// translation) that completes the job without a retry.
	OutcomeTerminal
)

// ItemFunc processes one claimed job and persists its own result. An
// error return makes the runner revert the job to the stage's retryable
// status with the error captured.
type ItemFunc func(ctx context.Context, job models.Job) (Outcome, error)

// Store is the slice of the job store a stage runner needs.
type Store interface {
	RequeueStalled(ctx context.Context, stage jobstore.StageSpec, olderThan time.Duration) (int64, error)
	Claim(ctx context.Context, stage jobstore.StageSpec, limit int) ([]models.Job, error)
	Revert(ctx context.Context, stage jobstore.StageSpec, code string, cause error) error
}

type Summary struct {
	Stage     string
	Requeued  int64
	Claimed   int
	Succeeded int
	Failed    int
	Terminal  int
	Duration  time.Duration
}

// Runner drives one claim-process-release cycle for a stage: requeue
// stalled work, claim a bounded batch, process items with bounded
// parallelism. One item's failure never aborts its siblings, and errors
// never escape the batch; they end up in the job's error_message.
type Runner struct {
	store        Store
	limit        int
	parallelism  int
	stallTimeout time.Duration
}

func NewRunner(store Store, limit, parallelism int, stallTimeout time.Duration) *Runner {
	if limit <= 0 {
		limit = 10
	}
	if parallelism <= 0 {
		parallelism = 5
	}
	return &Runner{
		store:        store,
		limit:        limit,
		parallelism:  parallelism,
		stallTimeout: stallTimeout,
	}
}

func (r *Runner) Run(ctx context.Context, stage jobstore.StageSpec, fn ItemFunc) (Summary, error) {
	start := time.Now()
	summary := Summary{Stage: stage.Name}

	requeued, err := r.store.RequeueStalled(ctx, stage, r.stallTimeout)
	if err != nil {
		return summary, err
	}
	summary.Requeued = requeued
	if requeued > 0 {
		logger.WithStage(stage.Name).WithField("requeued", requeued).Warn("Requeued stalled jobs")
	}

	jobs, err := r.store.Claim(ctx, stage, r.limit)
	if err != nil {
		return summary, err
	}
	summary.Claimed = len(jobs)
	if len(jobs) == 0 {
		summary.Duration = time.Since(start)
		return summary, nil
	}

	var succeeded, failed, terminal atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			outcome, itemErr := fn(gctx, job)
			if itemErr != nil {
				failed.Add(1)
				logger.WithStage(stage.Name).WithError(itemErr).WithField("code", job.Code).Error("Item failed, reverting")
				if revErr := r.store.Revert(gctx, stage, job.Code, itemErr); revErr != nil {
					logger.WithStage(stage.Name).WithError(revErr).WithField("code", job.Code).Error("Revert failed")
				}
				return nil
			}
			if outcome == OutcomeTerminal {
				terminal.Add(1)
			} else {
				succeeded.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary.Succeeded = int(succeeded.Load())
	summary.Failed = int(failed.Load())
	summary.Terminal = int(terminal.Load())
	summary.Duration = time.Since(start)

	logger.WithStage(stage.Name).WithFields(map[string]interface{}{
		"claimed":   summary.Claimed,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"terminal":  summary.Terminal,
		"duration":  summary.Duration.String(),
	}).Info("Batch complete")

	return summary, nil
}
