package media

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/vidscribe-ai/platform/pkg/common/httpclient"
	"github.com/vidscribe-ai/platform/pkg/common/models"
	"github.com/vidscribe-ai/platform/pkg/pipeline"
)

const maxAudioBytes = 64 << 20 // media hosts occasionally serve full video instead of audio

type Uploader interface {
	Bucket() string
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

type Store interface {
	MarkAudioReady(ctx context.Context, code, bucket, key string) error
}

// Fetcher downloads a job's audio resource and moves it into blob
// storage. Any failure reverts the job to queued with the error
// captured, so a future run retries the download from scratch.
type Fetcher struct {
	http  *resty.Client
	blob  Uploader
	store Store
}

func NewFetcher(blob Uploader, store Store) *Fetcher {
	rc := resty.NewWithClient(httpclient.New(90 * time.Second)).
		SetRetryCount(2).
		SetHeader("User-Agent", "vidscribe-audio-fetcher/1.0")
	return &Fetcher{http: rc, blob: blob, store: store}
}

func (f *Fetcher) Handle(ctx context.Context, job models.Job) (pipeline.Outcome, error) {
	if job.AudioURL == "" {
		return 0, fmt.Errorf("job %s has no audio url", job.Code)
	}

	resp, err := f.http.R().SetContext(ctx).Get(job.AudioURL)
	if err != nil {
		return 0, fmt.Errorf("download audio: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("download audio: unexpected status %d", resp.StatusCode())
	}
	body := resp.Body()
	if len(body) == 0 {
		return 0, fmt.Errorf("download audio: empty body")
	}
	if len(body) > maxAudioBytes {
		return 0, fmt.Errorf("download audio: %d bytes exceeds limit", len(body))
	}

	key := fmt.Sprintf("audio/%s.mp3", job.Code)
	if err := f.blob.Put(ctx, key, body, "audio/mpeg"); err != nil {
		return 0, err
	}

	if err := f.store.MarkAudioReady(ctx, job.Code, f.blob.Bucket(), key); err != nil {
		return 0, err
	}
	return pipeline.OutcomeSucceeded, nil
}
