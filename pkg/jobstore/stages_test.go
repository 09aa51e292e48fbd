package jobstore

import (
	"testing"

	"github.com/vidscribe-ai/platform/pkg/common/models"
)

func TestStageTransitionsAreLegal(t *testing.T) {
	stages := []struct {
		stage    StageSpec
		eligible models.Status
	}{
		{StageAudioFetch, models.StatusQueued},
		{StageTranscribe, models.StatusAudioReady},
		{StageTranslate, models.StatusTranscribed},
	}
	for _, tc := range stages {
		stage, eligible := tc.stage, tc.eligible
		if !models.CanTransition(eligible, stage.InProgress) {
			t.Fatalf("%s: claim %s -> %s is not a legal transition", stage.Name, eligible, stage.InProgress)
		}
		if !models.CanTransition(stage.InProgress, stage.Revert) {
			t.Fatalf("%s: revert %s -> %s is not a legal transition", stage.Name, stage.InProgress, stage.Revert)
		}
	}
}

func TestTranscribeFailureDoesNotForceRedownload(t *testing.T) {
	if StageTranscribe.Revert != models.StatusAudioReady {
		t.Fatalf("transcribe must revert to audio_ready, got %s", StageTranscribe.Revert)
	}
	if StageAudioFetch.Revert != models.StatusQueued {
		t.Fatalf("audio fetch must revert to queued, got %s", StageAudioFetch.Revert)
	}
	if StageTranslate.Revert != models.StatusTranscribed {
		t.Fatalf("translate must revert to transcribed, got %s", StageTranslate.Revert)
	}
}

func TestRefreshableStatus(t *testing.T) {
	refreshable := map[models.Status]bool{
		models.StatusQueued:           true,
		models.StatusAwaitingAudioURL: true,
		models.StatusAudioDownloading: false,
		models.StatusTranscribed:      false,
		models.StatusTranslated:       false,
		models.StatusNoSpeech:         false,
	}
	for status, want := range refreshable {
		if got := refreshableStatus(status); got != want {
			t.Fatalf("refreshableStatus(%s) = %v, want %v", status, got, want)
		}
	}
}
