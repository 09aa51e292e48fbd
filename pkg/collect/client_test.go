package collect

import (
	"testing"
	"time"
)

const listResponse = `{
  "items": [
    {
      "code": "Cxyz123",
      "caption": "first clip",
      "audio_url": "https://cdn.example.com/a1.mp3",
      "video_url": "https://cdn.example.com/v1.mp4",
      "owner": {"id": "501", "username": "creator_one"},
      "stats": {"likes": 120, "comments": 8, "views": 4000, "plays": 5200},
      "posted_at": "2026-02-10T09:30:00Z"
    },
    {
      "code": "",
      "caption": "missing code, skipped"
    },
    {
      "code": "Cabc456",
      "owner": {"id": "501", "username": "creator_one"},
      "stats": {"likes": 0, "comments": 0, "views": 0, "plays": 0}
    }
  ]
}`

func TestParsePosts(t *testing.T) {
	posts, err := parsePosts([]byte(listResponse))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts (codeless item skipped), got %d", len(posts))
	}

	first := posts[0]
	if first.Code != "Cxyz123" || first.OwnerID != "501" || first.Username != "creator_one" {
		t.Fatalf("unexpected first post: %+v", first)
	}
	if first.Likes != 120 || first.Comments != 8 || first.Views != 4000 || first.Plays != 5200 {
		t.Fatalf("unexpected stats: %+v", first)
	}
	want := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	if !first.PostedAt.Equal(want) {
		t.Fatalf("posted_at %v, want %v", first.PostedAt, want)
	}
	if len(first.Raw) == 0 {
		t.Fatal("raw payload must be retained")
	}

	second := posts[1]
	if second.AudioURL != "" {
		t.Fatalf("expected missing audio_url to stay empty, got %q", second.AudioURL)
	}
}

func TestParsePostsInvalidBody(t *testing.T) {
	if _, err := parsePosts([]byte("<html>error</html>")); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
}

func TestParsePostsEmptyItems(t *testing.T) {
	posts, err := parsePosts([]byte(`{"items": []}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected no posts, got %d", len(posts))
	}
}
