package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	api "github.com/ollama/ollama/api"

	"hydroatlas/internal/config"
	"hydroatlas/pkg/logger"
)

// LLMClient generates chat completions through the Ollama API.
type LLMClient struct {
	client      *api.Client
	model       string
	temperature float32
	maxTokens   int
	numCtx      int
	log         *logger.Logger
}

// NewLLMClient creates a client for the configured chat model.
func NewLLMClient(cfg *config.OllamaConfig, log *logger.Logger) (*LLMClient, error) {
	parsedURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}

	hc := &http.Client{
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}

	return &LLMClient{
		client:      api.NewClient(parsedURL, hc),
		model:       cfg.ChatModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		numCtx:      cfg.NumCtx,
		log:         log,
	}, nil
}

// ModelName returns the configured chat model name.
func (c *LLMClient) ModelName() string {
	return c.model
}

// Generate sends a system+user prompt pair as a non-streaming chat exchange
// and returns the cleaned response text. Transport failures and non-success
// responses come back as errors; callers substitute a fallback message.
func (c *LLMClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	stream := false
	var result string

	err := c.client.Chat(ctx, &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
			"num_ctx":     c.numCtx,
		},
	}, func(resp api.ChatResponse) error {
		result = resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate chat response with ollama: %w", err)
	}

	return CleanResponse(result), nil
}

// IsAvailable reports whether the configured chat model is present on the
// Ollama instance.
func (c *LLMClient) IsAvailable(ctx context.Context) bool {
	resp, err := c.client.List(ctx)
	if err != nil {
		c.log.WithError(err).Warn("ollama LLM service is not available")
		return false
	}
	return modelListed(resp, c.model)
}

var (
	thinkBlockRe   = regexp.MustCompile(`(?is)<think>.*?</think>`)
	thinkTagRe     = regexp.MustCompile(`(?i)</?think>`)
	thinkBracketRe = regexp.MustCompile(`(?is)\[thinking\].*?\[/thinking\]`)
	thinkBoldRe    = regexp.MustCompile(`(?is)\*\*Thinking\*\*:?.*?(\n\n|\z)`)
	leadingSpaceRe = regexp.MustCompile(`^\s+`)
	manyNewlinesRe = regexp.MustCompile(`\n{3,}`)
)

// CleanResponse strips reasoning artifacts some models emit before the real
// answer: <think> blocks, [thinking] blocks and **Thinking** paragraphs.
// It then trims leading whitespace and collapses runs of 3+ newlines to 2.
// Cleaning is idempotent and never touches text outside delimited blocks.
func CleanResponse(response string) string {
	if response == "" {
		return response
	}

	cleaned := thinkBlockRe.ReplaceAllString(response, "")
	cleaned = thinkTagRe.ReplaceAllString(cleaned, "")
	cleaned = thinkBracketRe.ReplaceAllString(cleaned, "")
	cleaned = thinkBoldRe.ReplaceAllString(cleaned, "")

	cleaned = leadingSpaceRe.ReplaceAllString(cleaned, "")
	cleaned = manyNewlinesRe.ReplaceAllString(cleaned, "\n\n")

	return strings.TrimSpace(cleaned)
}
