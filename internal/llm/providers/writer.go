package providers

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/sponsorworks/ideaforge/internal/common"
)

const (
	defaultWriterModel   = "palmyra-creative"
	defaultWriterBaseURL = "https://api.writer.com/v1"
)

// WriterBackend calls Writer's Palmyra models. Writer exposes an
// OpenAI-compatible chat-completions API, so the OpenAI client is pointed at
// their endpoint instead of carrying a separate SDK.
type WriterBackend struct {
	client openai.Client
	model  string
}

func NewWriterBackend(apiKey, model, baseURL string) *WriterBackend {
	if strings.TrimSpace(model) == "" {
		model = defaultWriterModel
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultWriterBaseURL
	}
	logger := common.Logger()
	logger.Info("llm: writer backend configured", "model", model, "endpoint", baseURL)
	return &WriterBackend{
		client: openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL)),
		model:  model,
	}
}

func (b *WriterBackend) Complete(ctx context.Context, system, prompt string) (string, error) {
	logger := common.Logger()
	logger.Debug("llm: sending writer request", "model", b.model, "prompt_length", len(prompt))
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		logger.Error("llm: writer request failed", "error", err)
		return "", fmt.Errorf("writer completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("writer completion: no choices returned")
	}
	logger.Debug("llm: writer request succeeded")
	return resp.Choices[0].Message.Content, nil
}

func (b *WriterBackend) Name() string {
	return "palmyra-creative"
}
