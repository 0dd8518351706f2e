package providers

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sponsorworks/ideaforge/internal/common"
)

const defaultClaudeModel = "claude-sonnet-4-20250514"

// ClaudeBackend calls the Anthropic Messages API.
type ClaudeBackend struct {
	client anthropic.Client
	model  string
}

func NewClaudeBackend(apiKey, model string) *ClaudeBackend {
	if strings.TrimSpace(model) == "" {
		model = defaultClaudeModel
	}
	logger := common.Logger()
	logger.Info("llm: claude backend configured", "model", model)
	return &ClaudeBackend{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *ClaudeBackend) Complete(ctx context.Context, system, prompt string) (string, error) {
	logger := common.Logger()
	logger.Debug("llm: sending claude request", "model", c.model, "prompt_length", len(prompt))
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		logger.Error("llm: claude request failed", "error", err)
		return "", fmt.Errorf("claude completion: %w", err)
	}
	var builder strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	if builder.Len() == 0 {
		return "", fmt.Errorf("claude completion: empty response")
	}
	logger.Debug("llm: claude request succeeded")
	return builder.String(), nil
}

func (c *ClaudeBackend) Name() string {
	return "claude"
}
