package models

import (
	"time"
)

// Status is the pipeline position of a job. Transitions are validated
// against the table below; anything else is rejected.
type Status string

const (
	StatusQueued           Status = "queued"
	StatusAwaitingAudioURL Status = "awaiting_audio_url"
	StatusAudioDownloading Status = "audio_downloading"
	StatusAudioReady       Status = "audio_ready"
	StatusTranscribing     Status = "transcribing"
	StatusTranscribed      Status = "transcribed"
	StatusNoSpeech         Status = "no_speech"
	StatusTranslating      Status = "translating"
	StatusTranslated       Status = "translated"
)

var transitions = map[Status][]Status{
	StatusQueued:           {StatusAudioDownloading, StatusAwaitingAudioURL},
	StatusAwaitingAudioURL: {StatusQueued},
	StatusAudioDownloading: {StatusAudioReady, StatusQueued},
	StatusAudioReady:       {StatusTranscribing},
	StatusTranscribing:     {StatusTranscribed, StatusNoSpeech, StatusAudioReady},
	StatusTranscribed:      {StatusTranslating},
	StatusTranslating:      {StatusTranslated, StatusTranscribed},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal statuses are never claimed again.
func (s Status) Terminal() bool {
	return s == StatusNoSpeech || s == StatusTranslated
}

const (
	TierActive  = "active"
	TierWatch   = "watch"
	TierSnoozed = "snoozed"
)

const (
	ScrapeActive   = "active"
	ScrapeNoItems  = "no_items"
	ScrapeDisabled = "disabled"
)

// Job tracks one post through the pipeline. Code is the immutable
// business key; workers are the only writers.
type Job struct {
	Code           string     `json:"code"`
	OwnerID        *string    `json:"owner_id,omitempty"`
	Status         Status     `json:"status"`
	AudioURL       string     `json:"audio_url,omitempty"`
	VideoURL       string     `json:"video_url,omitempty"`
	BlobBucket     string     `json:"blob_bucket,omitempty"`
	BlobKey        string     `json:"blob_key,omitempty"`
	TranscriptText *string    `json:"transcript_text,omitempty"`
	TranscriptJA   *string    `json:"transcript_ja,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	TranscribedAt  *time.Time `json:"transcribed_at,omitempty"`
}

type Account struct {
	OwnerID         string     `json:"owner_id"`
	Username        string     `json:"username"`
	Tier            string     `json:"tier"`
	SnoozeUntil     *time.Time `json:"snooze_until,omitempty"`
	AvgPlayLast20   float64    `json:"avg_play_last20"`
	AvgViewLast20   float64    `json:"avg_view_last20"`
	NewestPostedAt  *time.Time `json:"newest_posted_at,omitempty"`
	LastCollectedAt *time.Time `json:"last_collected_at,omitempty"`
	ScrapeStatus    string     `json:"scrape_status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PostMetric is the latest engagement snapshot for one post; refreshed
// in place on every re-collection.
type PostMetric struct {
	Code           string    `json:"code"`
	OwnerID        string    `json:"owner_id"`
	Likes          int64     `json:"likes"`
	Comments       int64     `json:"comments"`
	Views          int64     `json:"views"`
	Plays          int64     `json:"plays"`
	EngagementRate *float64  `json:"engagement_rate,omitempty"`
	PostedAt       time.Time `json:"posted_at"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// CollectedPost is one item returned by the content listing API.
type CollectedPost struct {
	Code     string
	OwnerID  string
	Username string
	Caption  string
	AudioURL string
	VideoURL string
	Likes    int64
	Comments int64
	Views    int64
	Plays    int64
	PostedAt time.Time
	Raw      []byte
}

// CursorPos is the compound watermark of the embedding indexer.
// (LastUpdatedAt, LastCode) is a strictly increasing total order over
// transcribed jobs.
type CursorPos struct {
	LastUpdatedAt time.Time `json:"last_updated_at"`
	LastCode      string    `json:"last_code"`
}

type TrendingPost struct {
	Rank           int       `json:"rank"`
	Code           string    `json:"code"`
	OwnerID        string    `json:"owner_id"`
	Likes          int64     `json:"likes"`
	Views          int64     `json:"views"`
	EngagementRate float64   `json:"engagement_rate"`
	TotalScore     float64   `json:"total_score"`
	PostedAt       time.Time `json:"posted_at"`
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // post.submitted, job.created, job.completed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
