package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidscribe-ai/platform/pkg/common/models"
)

type fakeJobSource struct {
	jobs []models.Job
	got  models.CursorPos
}

func (f *fakeJobSource) TranscribedAfter(ctx context.Context, cur models.CursorPos, limit int) ([]models.Job, error) {
	f.got = cur
	if len(f.jobs) > limit {
		return f.jobs[:limit], nil
	}
	return f.jobs, nil
}

type fakeChunkStore struct {
	cursor   models.CursorPos
	advanced []models.CursorPos
	upserted map[string][]ChunkRecord
}

func (f *fakeChunkStore) GetCursor(ctx context.Context) (models.CursorPos, error) {
	return f.cursor, nil
}

func (f *fakeChunkStore) AdvanceCursor(ctx context.Context, pos models.CursorPos) error {
	f.advanced = append(f.advanced, pos)
	return nil
}

func (f *fakeChunkStore) UpsertChunks(ctx context.Context, jobCode string, chunks []ChunkRecord) error {
	if f.upserted == nil {
		f.upserted = map[string][]ChunkRecord{}
	}
	f.upserted[jobCode] = chunks
	return nil
}

type fakeEmbedder struct {
	failOn map[string]bool
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for _, text := range texts {
		if f.failOn[text] {
			return nil, errors.New("embed refused")
		}
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func transcribedJob(code, text string, updated time.Time) models.Job {
	return models.Job{Code: code, Status: models.StatusTranscribed, TranscriptText: &text, UpdatedAt: updated}
}

func TestIndexerEmbedsAndAdvancesCursor(t *testing.T) {
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	jobs := &fakeJobSource{jobs: []models.Job{
		transcribedJob("j1", "First transcript.", base),
		transcribedJob("j2", "Second transcript.", base.Add(time.Minute)),
	}}
	chunks := &fakeChunkStore{}
	ix := NewIndexer(jobs, chunks, &fakeEmbedder{}, 20, 800, 200)

	summary, err := ix.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Scanned != 2 || summary.Embedded != 2 || summary.Stopped {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !summary.CursorMoved || len(chunks.advanced) != 1 {
		t.Fatalf("expected one cursor advance, got %v", chunks.advanced)
	}
	last := chunks.advanced[0]
	if last.LastCode != "j2" || !last.LastUpdatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("cursor advanced to wrong position: %+v", last)
	}
	if len(chunks.upserted["j1"]) == 0 || len(chunks.upserted["j2"]) == 0 {
		t.Fatal("expected chunks upserted for both jobs")
	}
}

func TestIndexerStopsOnFailureAndHoldsCursor(t *testing.T) {
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	jobs := &fakeJobSource{jobs: []models.Job{
		transcribedJob("ok", "Good transcript.", base),
		transcribedJob("bad", "Poison transcript.", base.Add(time.Minute)),
		transcribedJob("never", "Unreached transcript.", base.Add(2*time.Minute)),
	}}
	chunks := &fakeChunkStore{}
	embedder := &fakeEmbedder{failOn: map[string]bool{"Poison transcript.": true}}
	ix := NewIndexer(jobs, chunks, embedder, 20, 800, 200)

	summary, err := ix.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !summary.Stopped {
		t.Fatal("expected batch to stop on failure")
	}
	if summary.Embedded != 1 {
		t.Fatalf("expected 1 embedded, got %d", summary.Embedded)
	}
	if _, ok := chunks.upserted["never"]; ok {
		t.Fatal("jobs after the failure must not be processed")
	}
	if len(chunks.advanced) != 1 || chunks.advanced[0].LastCode != "ok" {
		t.Fatalf("cursor must stop at last success, got %v", chunks.advanced)
	}
}

func TestIndexerFirstJobFailureLeavesCursorUntouched(t *testing.T) {
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	jobs := &fakeJobSource{jobs: []models.Job{
		transcribedJob("bad", "Poison transcript.", base),
	}}
	chunks := &fakeChunkStore{cursor: models.CursorPos{LastCode: "old", LastUpdatedAt: base.Add(-time.Hour)}}
	embedder := &fakeEmbedder{failOn: map[string]bool{"Poison transcript.": true}}
	ix := NewIndexer(jobs, chunks, embedder, 20, 800, 200)

	summary, err := ix.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.CursorMoved || len(chunks.advanced) != 0 {
		t.Fatalf("cursor must not move when nothing embedded, got %v", chunks.advanced)
	}
}

func TestIndexerResumesFromStoredCursor(t *testing.T) {
	pos := models.CursorPos{LastCode: "j9", LastUpdatedAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)}
	jobs := &fakeJobSource{}
	chunks := &fakeChunkStore{cursor: pos}
	ix := NewIndexer(jobs, chunks, &fakeEmbedder{}, 20, 800, 200)

	if _, err := ix.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if jobs.got != pos {
		t.Fatalf("expected scan from %+v, got %+v", pos, jobs.got)
	}
}

func TestIndexerSkipsJobsWithoutTranscript(t *testing.T) {
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	jobs := &fakeJobSource{jobs: []models.Job{
		{Code: "empty", Status: models.StatusTranscribed, UpdatedAt: base},
		transcribedJob("real", "Actual words.", base.Add(time.Minute)),
	}}
	chunks := &fakeChunkStore{}
	ix := NewIndexer(jobs, chunks, &fakeEmbedder{}, 20, 800, 200)

	summary, err := ix.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Embedded != 1 {
		t.Fatalf("expected only the real transcript embedded, got %d", summary.Embedded)
	}
	if len(chunks.advanced) != 1 || chunks.advanced[0].LastCode != "real" {
		t.Fatalf("cursor must still pass the empty job, got %v", chunks.advanced)
	}
}
