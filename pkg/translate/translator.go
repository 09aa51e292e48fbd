package translate

import (
	"context"
	"fmt"

	"github.com/vidscribe-ai/platform/pkg/common/models"
	"github.com/vidscribe-ai/platform/pkg/pipeline"
)

const translatePrompt = `Translate the following short-video transcript into natural Japanese.
Keep the speaker's tone. Return ONLY the translation, no commentary, no quotes.

Transcript:
%s`

type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Store interface {
	MarkTranslated(ctx context.Context, code string, translation *string) error
}

// Translator turns a transcript into Japanese. An unusable response
// (empty, "null", "undefined") completes the job with a NULL translation
// instead of retrying; provider errors revert to transcribed.
type Translator struct {
	gen   TextGenerator
	store Store
}

func NewTranslator(gen TextGenerator, store Store) *Translator {
	return &Translator{gen: gen, store: store}
}

func (t *Translator) Handle(ctx context.Context, job models.Job) (pipeline.Outcome, error) {
	if job.TranscriptText == nil || *job.TranscriptText == "" {
		return 0, fmt.Errorf("job %s has no transcript", job.Code)
	}

	raw, err := t.gen.Generate(ctx, fmt.Sprintf(translatePrompt, *job.TranscriptText))
	if err != nil {
		return 0, err
	}

	normalized := Normalize(raw)
	if Invalid(normalized) {
		if err := t.store.MarkTranslated(ctx, job.Code, nil); err != nil {
			return 0, err
		}
		return pipeline.OutcomeTerminal, nil
	}

	if err := t.store.MarkTranslated(ctx, job.Code, &normalized); err != nil {
		return 0, err
	}
	return pipeline.OutcomeSucceeded, nil
}
