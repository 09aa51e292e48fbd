package speech

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidscribe-ai/platform/pkg/common/models"
	"github.com/vidscribe-ai/platform/pkg/pipeline"
)

type fakeRecognizer struct {
	text     string
	err      error
	gotAudio []byte
	gotName  string
}

func (f *fakeRecognizer) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	f.gotAudio = audio
	f.gotName = filename
	return f.text, f.err
}

type fakePresigner struct {
	base string
}

func (f *fakePresigner) PresignGet(key string) string {
	return f.base + "/" + key + "?signature=abc"
}

type fakeTranscriptStore struct {
	transcribed string
	noSpeech    bool
}

func (f *fakeTranscriptStore) MarkTranscribed(ctx context.Context, code, text string) error {
	f.transcribed = text
	return nil
}

func (f *fakeTranscriptStore) MarkNoSpeech(ctx context.Context, code string) error {
	f.noSpeech = true
	return nil
}

func audioServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
}

func TestTranscriberStoresText(t *testing.T) {
	server := audioServer(t, []byte("mp3"))
	defer server.Close()

	rec := &fakeRecognizer{text: "  hello from the video  "}
	store := &fakeTranscriptStore{}
	tr := NewTranscriber(rec, &fakePresigner{base: server.URL}, store)

	job := models.Job{Code: "c1", Status: models.StatusTranscribing, BlobKey: "audio/c1.mp3"}
	outcome, err := tr.Handle(context.Background(), job)
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if outcome != pipeline.OutcomeSucceeded {
		t.Fatalf("unexpected outcome %v", outcome)
	}
	if store.transcribed != "hello from the video" {
		t.Fatalf("expected trimmed transcript, got %q", store.transcribed)
	}
	if rec.gotName != "c1.mp3" {
		t.Fatalf("recognizer got filename %q", rec.gotName)
	}
	if string(rec.gotAudio) != "mp3" {
		t.Fatalf("recognizer got audio %q", rec.gotAudio)
	}
}

func TestTranscriberNoSpeechIsTerminal(t *testing.T) {
	server := audioServer(t, []byte("mp3"))
	defer server.Close()

	store := &fakeTranscriptStore{}
	tr := NewTranscriber(&fakeRecognizer{text: "   "}, &fakePresigner{base: server.URL}, store)

	outcome, err := tr.Handle(context.Background(), models.Job{Code: "c2", BlobKey: "audio/c2.mp3"})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if outcome != pipeline.OutcomeTerminal {
		t.Fatalf("expected terminal outcome, got %v", outcome)
	}
	if !store.noSpeech || store.transcribed != "" {
		t.Fatalf("expected no-speech mark only, got %+v", store)
	}
}

func TestTranscriberProviderErrorPropagates(t *testing.T) {
	server := audioServer(t, []byte("mp3"))
	defer server.Close()

	store := &fakeTranscriptStore{}
	tr := NewTranscriber(&fakeRecognizer{err: errors.New("asr down")}, &fakePresigner{base: server.URL}, store)

	if _, err := tr.Handle(context.Background(), models.Job{Code: "c3", BlobKey: "audio/c3.mp3"}); err == nil {
		t.Fatal("expected provider error to surface")
	}
	if store.noSpeech || store.transcribed != "" {
		t.Fatal("nothing must be stored on provider error")
	}
}

func TestTranscriberRejectsMissingBlob(t *testing.T) {
	tr := NewTranscriber(&fakeRecognizer{}, &fakePresigner{}, &fakeTranscriptStore{})
	if _, err := tr.Handle(context.Background(), models.Job{Code: "c4"}); err == nil {
		t.Fatal("expected error for job without stored audio")
	}
}
