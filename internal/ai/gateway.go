package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// GeneratorFactory builds a ContentGenerator for a given API key. The
// gateway resolves the key per call so a user override takes effect without
// restarting anything.
type GeneratorFactory func(ctx context.Context, apiKey string) (ContentGenerator, error)

// Gateway is the stateless AI proxy: each operation applies its prompt
// template and forwards the result as-is. It never caches, never retries.
type Gateway struct {
	platformKey string
	factory     GeneratorFactory
}

func NewGateway(platformKey string, factory GeneratorFactory) *Gateway {
	return &Gateway{platformKey: platformKey, factory: factory}
}

func (g *Gateway) generator(ctx context.Context, overrideKey string) (ContentGenerator, error) {
	key := g.platformKey
	if overrideKey != "" {
		key = overrideKey
	}
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	return g.factory(ctx, key)
}

// Draft produces a first-pass legal document from free-form instructions.
func (g *Gateway) Draft(ctx context.Context, overrideKey, instructions string) (string, error) {
	gen, err := g.generator(ctx, overrideKey)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(
		"Você é um assistente jurídico brasileiro. Redija um documento jurídico "+
			"formal em português a partir das instruções abaixo. Responda apenas "+
			"com o texto do documento.\n\nInstruções:\n%s", instructions)
	return gen.Generate(ctx, prompt, false)
}

// Prediction is the structured outcome-prediction payload.
type Prediction struct {
	Outcome     string   `json:"outcome"`
	Probability float64  `json:"probability"`
	Rationale   string   `json:"rationale"`
	KeyFactors  []string `json:"key_factors"`
}

// PredictOutcome analyzes case facts and returns a structured prediction. A
// response that does not parse as the expected shape is an error, never a
// default object.
func (g *Gateway) PredictOutcome(ctx context.Context, overrideKey, facts string) (*Prediction, error) {
	gen, err := g.generator(ctx, overrideKey)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(
		"Você é um analista jurídico. Avalie os fatos do caso abaixo e responda "+
			"somente com JSON no formato "+
			`{"outcome": string, "probability": number entre 0 e 1, "rationale": string, "key_factors": [string]}`+
			".\n\nFatos:\n%s", facts)
	raw, err := gen.Generate(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	var prediction Prediction
	if err := json.Unmarshal([]byte(stripFences(raw)), &prediction); err != nil {
		return nil, fmt.Errorf("parsing prediction response: %w", err)
	}
	return &prediction, nil
}

// AnalyzeSentiment classifies a text and returns the model's JSON verbatim.
// The payload is validated to be well-formed JSON with the expected fields,
// then passed through unchanged.
func (g *Gateway) AnalyzeSentiment(ctx context.Context, overrideKey, text string) (json.RawMessage, error) {
	gen, err := g.generator(ctx, overrideKey)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(
		"Classifique o sentimento do texto abaixo. Responda somente com JSON no "+
			`formato {"sentiment": "positivo"|"neutro"|"negativo", "score": number entre 0 e 1}`+
			".\n\nTexto:\n%s", text)
	raw, err := gen.Generate(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	cleaned := stripFences(raw)
	var probe struct {
		Sentiment *string  `json:"sentiment"`
		Score     *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return nil, fmt.Errorf("parsing sentiment response: %w", err)
	}
	if probe.Sentiment == nil || probe.Score == nil {
		return nil, fmt.Errorf("parsing sentiment response: missing fields")
	}
	return json.RawMessage(cleaned), nil
}

// Translate renders a text into one target language.
func (g *Gateway) Translate(ctx context.Context, overrideKey, text, target string) (string, error) {
	gen, err := g.generator(ctx, overrideKey)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(
		"Traduza o texto abaixo para %s, preservando terminologia jurídica. "+
			"Responda apenas com a tradução.\n\nTexto:\n%s", target, text)
	return gen.Generate(ctx, prompt, false)
}

// TranslatePlain rewrites legal text in plain language for lay clients.
func (g *Gateway) TranslatePlain(ctx context.Context, overrideKey, text string) (string, error) {
	gen, err := g.generator(ctx, overrideKey)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(
		"Reescreva o texto jurídico abaixo em linguagem simples e acessível, "+
			"sem jargão, mantendo o significado. Responda apenas com o texto "+
			"reescrito.\n\nTexto:\n%s", text)
	return gen.Generate(ctx, prompt, false)
}

// stripFences removes a markdown code fence the model sometimes wraps JSON
// in, leaving real parse failures to surface as errors.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
