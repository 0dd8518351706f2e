// Package llm routes generation requests to the configured model backend and
// normalizes each backend's raw text into a structured idea list.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sponsorworks/ideaforge/internal/common"
	"github.com/sponsorworks/ideaforge/internal/llm/providers"
)

// Backend identifiers accepted in generation requests.
const (
	BackendClaude = "claude"
	BackendWriter = "palmyra-creative"
	BackendGemini = "gemini"
)

// SystemPrompt is the fixed persona sent with every backend call.
const SystemPrompt = "You are a senior sponsorship-activation strategist at a creative agency. " +
	"You design breakthrough activation concepts that connect brands with sports, music, and " +
	"cultural properties. Your ideas are specific, producible, and grounded in how fans actually " +
	"behave. You respond only in the exact format the request asks for."

// Config resolves backend credentials once at construction, so availability
// is an explicit capability set rather than scattered environment reads.
type Config struct {
	AnthropicAPIKey string
	WriterAPIKey    string
	GoogleAIAPIKey  string

	ClaudeModel   string
	WriterModel   string
	GeminiModel   string
	WriterBaseURL string
}

// LoadConfig reads backend credentials and model overrides from the
// environment. This is the only place the credential variables are read.
func LoadConfig() Config {
	return Config{
		AnthropicAPIKey: strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		WriterAPIKey:    strings.TrimSpace(os.Getenv("WRITER_API_KEY")),
		GoogleAIAPIKey:  strings.TrimSpace(os.Getenv("GOOGLE_AI_API_KEY")),
		ClaudeModel:     strings.TrimSpace(os.Getenv("CLAUDE_MODEL")),
		WriterModel:     strings.TrimSpace(os.Getenv("WRITER_MODEL")),
		GeminiModel:     strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		WriterBaseURL:   strings.TrimSpace(os.Getenv("WRITER_BASE_URL")),
	}
}

// Capabilities reports which backends hold a credential.
type Capabilities struct {
	Claude bool `json:"claude"`
	Writer bool `json:"writer"`
	Gemini bool `json:"gemini"`
}

// Router dispatches generation calls to the requested backend.
type Router struct {
	backends map[string]providers.Backend
}

// Option customises router construction.
type Option func(*Router)

// WithBackend installs (or replaces) a backend under the given identifier.
// Tests use this to inject fakes without touching the environment.
func WithBackend(id string, backend providers.Backend) Option {
	return func(r *Router) {
		r.backends[id] = backend
	}
}

// NewRouter builds a router with one backend per available credential.
func NewRouter(cfg Config, opts ...Option) *Router {
	logger := common.Logger()
	r := &Router{backends: make(map[string]providers.Backend)}
	if cfg.AnthropicAPIKey != "" {
		r.backends[BackendClaude] = providers.NewClaudeBackend(cfg.AnthropicAPIKey, cfg.ClaudeModel)
	}
	if cfg.WriterAPIKey != "" {
		r.backends[BackendWriter] = providers.NewWriterBackend(cfg.WriterAPIKey, cfg.WriterModel, cfg.WriterBaseURL)
	}
	if cfg.GoogleAIAPIKey != "" {
		r.backends[BackendGemini] = providers.NewGeminiBackend(cfg.GoogleAIAPIKey, cfg.GeminiModel)
	}
	for _, opt := range opts {
		opt(r)
	}
	caps := r.Capabilities()
	logger.Info("llm: router ready", "claude", caps.Claude, "writer", caps.Writer, "gemini", caps.Gemini)
	return r
}

// Capabilities returns the availability set resolved at construction.
func (r *Router) Capabilities() Capabilities {
	if r == nil {
		return Capabilities{}
	}
	_, claude := r.backends[BackendClaude]
	_, writer := r.backends[BackendWriter]
	_, gemini := r.backends[BackendGemini]
	return Capabilities{Claude: claude, Writer: writer, Gemini: gemini}
}

// Available reports whether the given backend identifier can serve requests.
// An empty identifier resolves to the default backend.
func (r *Router) Available(backend string) error {
	id := normalizeBackend(backend)
	switch id {
	case BackendClaude, BackendWriter, BackendGemini:
	default:
		return &ConfigurationError{Backend: id, Kind: KindUnknownBackend}
	}
	if r == nil || r.backends[id] == nil {
		return &ConfigurationError{Backend: id, Kind: KindMissingAPIKey}
	}
	return nil
}

// Generate sends the prompt to the requested backend and returns the
// normalized idea list. The router passes through however many ideas the
// model produced; callers decide what to do with a count mismatch.
func (r *Router) Generate(ctx context.Context, backend, prompt string) ([]Idea, error) {
	logger := common.Logger()
	if err := r.Available(backend); err != nil {
		return nil, err
	}
	id := normalizeBackend(backend)
	raw, err := r.backends[id].Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", id, err)
	}
	ideas, err := ExtractIdeas(raw)
	if err != nil {
		logger.Error("llm: response normalization failed", "backend", id, "error", err)
		return nil, err
	}
	logger.Debug("llm: generation succeeded", "backend", id, "ideas", len(ideas))
	return ideas, nil
}

func normalizeBackend(backend string) string {
	id := strings.ToLower(strings.TrimSpace(backend))
	if id == "" {
		return BackendClaude
	}
	return id
}
