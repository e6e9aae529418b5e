// Package ai forwards drafting, analysis, and translation requests to the
// Gemini generative API behind a fixed set of prompt templates. The gateway
// keeps no state between calls.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var (
	ErrMissingAPIKey = errors.New("generative API key is not configured")
	ErrEmptyResponse = errors.New("generative API returned no content")
)

// ContentGenerator is the single collaborator the gateway needs: one prompt
// in, one text completion out. structured asks the backend for a JSON body.
type ContentGenerator interface {
	Generate(ctx context.Context, prompt string, structured bool) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator dials the Gemini API. The key may be the platform key
// or a per-user override; an empty key fails fast before any network call.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (ContentGenerator, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &geminiGenerator{client: client, model: model}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string, structured bool) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if structured {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	if out.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return out.String(), nil
}
