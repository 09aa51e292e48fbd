package embedding

import (
	"context"

	"github.com/vidscribe-ai/platform/pkg/common/logger"
	"github.com/vidscribe-ai/platform/pkg/common/models"
)

type JobSource interface {
	TranscribedAfter(ctx context.Context, cur models.CursorPos, limit int) ([]models.Job, error)
}

type ChunkStore interface {
	GetCursor(ctx context.Context) (models.CursorPos, error)
	AdvanceCursor(ctx context.Context, pos models.CursorPos) error
	UpsertChunks(ctx context.Context, jobCode string, chunks []ChunkRecord) error
}

type Summary struct {
	Scanned     int
	Embedded    int
	Chunks      int
	Stopped     bool
	CursorMoved bool
}

// Indexer incrementally embeds transcripts, resuming from the
// (updated_at, code) watermark rather than the job status. On the first
// failing job it stops and leaves the cursor at the last success, so a
// retry revisits the failed job; already-embedded jobs it revisits are
// harmless because chunk upserts are idempotent.
type Indexer struct {
	jobs      JobSource
	chunks    ChunkStore
	embedder  Embedder
	batchSize int
	maxRunes  int
	overlap   int
}

func NewIndexer(jobs JobSource, chunks ChunkStore, embedder Embedder, batchSize, maxRunes, overlap int) *Indexer {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &Indexer{
		jobs:      jobs,
		chunks:    chunks,
		embedder:  embedder,
		batchSize: batchSize,
		maxRunes:  maxRunes,
		overlap:   overlap,
	}
}

func (ix *Indexer) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	cursor, err := ix.chunks.GetCursor(ctx)
	if err != nil {
		return summary, err
	}

	jobs, err := ix.jobs.TranscribedAfter(ctx, cursor, ix.batchSize)
	if err != nil {
		return summary, err
	}
	summary.Scanned = len(jobs)

	var lastDone *models.CursorPos
	for _, job := range jobs {
		if err := ix.indexJob(ctx, job, &summary); err != nil {
			logger.WithStage("embed").WithError(err).WithField("code", job.Code).Error("Embedding failed, stopping batch")
			summary.Stopped = true
			break
		}
		lastDone = &models.CursorPos{LastUpdatedAt: job.UpdatedAt, LastCode: job.Code}
	}

	if lastDone != nil {
		if err := ix.chunks.AdvanceCursor(ctx, *lastDone); err != nil {
			return summary, err
		}
		summary.CursorMoved = true
	}

	logger.WithStage("embed").WithFields(map[string]interface{}{
		"scanned":      summary.Scanned,
		"embedded":     summary.Embedded,
		"chunks":       summary.Chunks,
		"stopped":      summary.Stopped,
		"cursor_moved": summary.CursorMoved,
	}).Info("Indexer run complete")

	return summary, nil
}

func (ix *Indexer) indexJob(ctx context.Context, job models.Job, summary *Summary) error {
	if job.TranscriptText == nil {
		return nil
	}

	pieces := Chunk(*job.TranscriptText, ix.maxRunes, ix.overlap)
	if len(pieces) == 0 {
		return nil
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return err
	}

	records := make([]ChunkRecord, 0, len(pieces))
	for i, piece := range pieces {
		records = append(records, ChunkRecord{Index: i, Text: piece, Vector: vectors[i]})
	}
	if err := ix.chunks.UpsertChunks(ctx, job.Code, records); err != nil {
		return err
	}

	summary.Embedded++
	summary.Chunks += len(records)
	return nil
}
