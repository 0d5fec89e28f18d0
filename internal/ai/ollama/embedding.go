package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	api "github.com/ollama/ollama/api"

	"hydroatlas/internal/config"
	"hydroatlas/pkg/logger"
)

// EmbeddingClient generates embedding vectors through the Ollama API.
type EmbeddingClient struct {
	client *api.Client
	model  string
	log    *logger.Logger
}

// NewEmbeddingClient creates a client for the configured embedding model.
func NewEmbeddingClient(cfg *config.OllamaConfig, log *logger.Logger) (*EmbeddingClient, error) {
	parsedURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}

	hc := &http.Client{
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}

	return &EmbeddingClient{
		client: api.NewClient(parsedURL, hc),
		model:  cfg.EmbeddingModel,
		log:    log,
	}, nil
}

// Embed generates an embedding vector for a single text. Any backend failure
// is returned as an error; callers treat it as "skip this item", not fatal.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.Embed(ctx, &api.EmbedRequest{
		Model: c.model,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("get embedding from ollama: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return resp.Embeddings[0], nil
}

// EmbedBatch embeds texts sequentially, silently dropping failed items and
// returning only successful vectors. Callers needing per-item accounting
// must compare lengths themselves.
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	results := make([][]float32, 0, len(texts))
	for _, text := range texts {
		embedding, err := c.Embed(ctx, text)
		if err != nil {
			c.log.WithError(err).Warn("skipping text that failed to embed")
			continue
		}
		results = append(results, embedding)
	}
	return results
}

// IsAvailable reports whether the configured embedding model is actually
// present on the Ollama instance, not merely that the service responds.
func (c *EmbeddingClient) IsAvailable(ctx context.Context) bool {
	resp, err := c.client.List(ctx)
	if err != nil {
		c.log.WithError(err).Warn("ollama embedding service is not available")
		return false
	}
	return modelListed(resp, c.model)
}

// modelListed matches the configured model name against the installed model
// list, tolerating an omitted ":tag" suffix.
func modelListed(resp *api.ListResponse, model string) bool {
	for _, m := range resp.Models {
		if strings.EqualFold(m.Name, model) ||
			strings.HasPrefix(strings.ToLower(m.Name), strings.ToLower(model)+":") {
			return true
		}
	}
	return false
}
