package jobstore

import (
	"github.com/vidscribe-ai/platform/pkg/common/models"
)

// StageSpec describes how one pipeline stage claims and releases jobs.
// Eligible is the claim predicate; Revert is where a failed or stalled
// item goes back to. The download/transcribe asymmetry is intentional:
// a transcription failure must not force a re-download.
type StageSpec struct {
	Name       string
	Eligible   string
	Args       []interface{}
	InProgress models.Status
	Revert     models.Status
}

var (
	StageAudioFetch = StageSpec{
		Name:       "audio_fetch",
		Eligible:   "status = ? AND audio_url <> '' AND blob_key = ''",
		Args:       []interface{}{string(models.StatusQueued)},
		InProgress: models.StatusAudioDownloading,
		Revert:     models.StatusQueued,
	}

	StageTranscribe = StageSpec{
		Name:       "transcribe",
		Eligible:   "status = ? AND transcript_text IS NULL",
		Args:       []interface{}{string(models.StatusAudioReady)},
		InProgress: models.StatusTranscribing,
		Revert:     models.StatusAudioReady,
	}

	StageTranslate = StageSpec{
		Name:       "translate",
		Eligible:   "status = ? AND transcript_ja IS NULL",
		Args:       []interface{}{string(models.StatusTranscribed)},
		InProgress: models.StatusTranslating,
		Revert:     models.StatusTranscribed,
	}
)
