package llm

import (
	"context"
	"fmt"
	"time"

	"ciboway/internal/config"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for an agent execution.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewTextGenerator returns the configured text model: Groq when a key is
// set, Gemini otherwise. The Closer releases the Gemini client.
func NewTextGenerator(ctx context.Context, cfg *config.Config) (TextGenerator, Closer, error) {
	if cfg.GroqAPIKey != "" {
		return NewGroqClient(cfg, ModelExtractor, 0.1), nopCloser{}, nil
	}
	if cfg.GeminiAPIKey != "" {
		client, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	}
	return nil, nil, fmt.Errorf("no LLM configured: set GROQ_API_KEY or GEMINI_API_KEY")
}
