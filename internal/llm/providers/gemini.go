package providers

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/sponsorworks/ideaforge/internal/common"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiBackend calls the Google AI generateContent API. The client is built
// lazily because construction needs a context.
type GeminiBackend struct {
	apiKey string
	model  string
}

func NewGeminiBackend(apiKey, model string) *GeminiBackend {
	if strings.TrimSpace(model) == "" {
		model = defaultGeminiModel
	}
	common.Logger().Info("llm: gemini backend configured", "model", model)
	return &GeminiBackend{apiKey: apiKey, model: model}
}

func (g *GeminiBackend) Complete(ctx context.Context, system, prompt string) (string, error) {
	logger := common.Logger()
	logger.Debug("llm: sending gemini request", "model", g.model, "prompt_length", len(prompt))
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	})
	if err != nil {
		logger.Error("llm: gemini request failed", "error", err)
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini completion: empty response")
	}
	logger.Debug("llm: gemini request succeeded")
	return text, nil
}

func (g *GeminiBackend) Name() string {
	return "gemini"
}
