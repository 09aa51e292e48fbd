package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/vidscribe-ai/platform/pkg/common/config"
	"github.com/vidscribe-ai/platform/pkg/common/httpclient"
	"google.golang.org/genai"
)

// Generator wraps the Gemini text-generation API behind the one call the
// translator needs.
type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGenerator(ctx context.Context, cfg *config.Config) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Generator{client: client, model: cfg.TranslateModel, timeout: cfg.GeminiTimeout}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var result *genai.GenerateContentResponse
	err := httpclient.Retry(ctx, 3, 2*time.Second, 15*time.Second, func() error {
		var callErr error
		result, callErr = g.client.Models.GenerateContent(
			ctx,
			g.model,
			genai.Text(prompt),
			&genai.GenerateContentConfig{Temperature: genai.Ptr(float32(0.1))},
		)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("generate content: empty response")
	}
	return result.Text(), nil
}
