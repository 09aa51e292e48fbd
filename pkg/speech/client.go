package speech

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"github.com/vidscribe-ai/platform/pkg/common/config"
	"github.com/vidscribe-ai/platform/pkg/common/httpclient"
)

// Client calls the speech-to-text provider. Providers are
// interchangeable behind the /v1/transcriptions shape.
type Client struct {
	http *resty.Client
}

func NewClient(cfg *config.Config) *Client {
	rc := resty.NewWithClient(httpclient.New(cfg.SpeechTimeout)).
		SetBaseURL(cfg.SpeechBaseURL).
		SetAuthToken(cfg.SpeechAPIKey)
	return &Client{http: rc}
}

// Transcribe submits audio bytes and returns the recognized text. An
// empty string is a legitimate result, not an error: it means the
// provider found no speech.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(audio)).
		SetFormData(map[string]string{"response_format": "json"}).
		Post("/v1/transcriptions")
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("transcribe: unexpected status %d", resp.StatusCode())
	}

	return gjson.GetBytes(resp.Body(), "text").String(), nil
}
