package speech

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/vidscribe-ai/platform/pkg/common/httpclient"
	"github.com/vidscribe-ai/platform/pkg/common/models"
	"github.com/vidscribe-ai/platform/pkg/pipeline"
)

type Recognizer interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

type Presigner interface {
	PresignGet(key string) string
}

type Store interface {
	MarkTranscribed(ctx context.Context, code, text string) error
	MarkNoSpeech(ctx context.Context, code string) error
}

// Transcriber pulls a job's stored audio through a signed URL and runs
// it through speech-to-text. No speech is a terminal outcome; provider
// failures revert the job to audio_ready so the stored blob is reused.
type Transcriber struct {
	http       *resty.Client
	recognizer Recognizer
	presigner  Presigner
	store      Store
}

func NewTranscriber(recognizer Recognizer, presigner Presigner, store Store) *Transcriber {
	rc := resty.NewWithClient(httpclient.New(2 * time.Minute)).SetRetryCount(2)
	return &Transcriber{http: rc, recognizer: recognizer, presigner: presigner, store: store}
}

func (t *Transcriber) Handle(ctx context.Context, job models.Job) (pipeline.Outcome, error) {
	if job.BlobKey == "" {
		return 0, fmt.Errorf("job %s has no stored audio", job.Code)
	}

	signedURL := t.presigner.PresignGet(job.BlobKey)
	resp, err := t.http.R().SetContext(ctx).Get(signedURL)
	if err != nil {
		return 0, fmt.Errorf("fetch stored audio: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("fetch stored audio: unexpected status %d", resp.StatusCode())
	}

	text, err := t.recognizer.Transcribe(ctx, resp.Body(), path.Base(job.BlobKey))
	if err != nil {
		return 0, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		if err := t.store.MarkNoSpeech(ctx, job.Code); err != nil {
			return 0, err
		}
		return pipeline.OutcomeTerminal, nil
	}

	if err := t.store.MarkTranscribed(ctx, job.Code, text); err != nil {
		return 0, err
	}
	return pipeline.OutcomeSucceeded, nil
}
