package media

import (
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/vidscribe-ai/platform/pkg/common/config"
)

func testBlobStore() *BlobStore {
	return NewBlobStore(&config.Config{
		BlobEndpoint:   "https://blobs.example.com",
		BlobBucket:     "media",
		BlobAccessKey:  "AKTEST",
		BlobSecretKey:  "secret",
		BlobPresignTTL: 15 * time.Minute,
	})
}

func TestPresignGetURLShape(t *testing.T) {
	store := testBlobStore()
	raw := store.PresignGet("audio/Cxyz123.mp3")

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("presigned url does not parse: %v", err)
	}
	if parsed.Path != "/media/audio/Cxyz123.mp3" {
		t.Fatalf("unexpected path %q", parsed.Path)
	}
	q := parsed.Query()
	if q.Get("access_key") != "AKTEST" {
		t.Fatalf("access_key missing, got %q", q.Get("access_key"))
	}
	if q.Get("signature") == "" {
		t.Fatal("signature missing")
	}

	expires, err := strconv.ParseInt(q.Get("expires"), 10, 64)
	if err != nil {
		t.Fatalf("expires not numeric: %v", err)
	}
	until := time.Until(time.Unix(expires, 0))
	if until < 14*time.Minute || until > 16*time.Minute {
		t.Fatalf("expiry %v outside the configured TTL", until)
	}
}

func TestPresignSignatureCoversExpiry(t *testing.T) {
	store := testBlobStore()
	a := store.PresignGet("audio/a.mp3")
	b := store.PresignGet("audio/b.mp3")

	sigOf := func(raw string) string {
		parsed, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		return parsed.Query().Get("signature")
	}
	if sigOf(a) == sigOf(b) {
		t.Fatal("different keys must not share a signature")
	}
}

func TestPresignSecretNotLeaked(t *testing.T) {
	store := testBlobStore()
	raw := store.PresignGet("audio/a.mp3")
	if strings.Contains(raw, "secret") {
		t.Fatal("secret key must never appear in the url")
	}
}

func TestBucket(t *testing.T) {
	if got := testBlobStore().Bucket(); got != "media" {
		t.Fatalf("got %q", got)
	}
}
