package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"hydroatlas/internal/models"
	"hydroatlas/pkg/cache"
	"hydroatlas/pkg/logger"
)

const (
	maxContentSnippetLength = 500

	queryCacheSize = 256
	queryCacheTTL  = 10 * time.Minute
)

// Engine performs semantic search across the water-object and
// standalone-document corpora.
type Engine struct {
	store        Store
	embedder     Embedder
	minRelevance float64
	queryCache   *cache.LRU[string, []float32]
	log          *logger.Logger
}

// NewEngine creates a retrieval engine. minRelevance is the inclusion floor:
// merged results below it never enter the context or the source list.
func NewEngine(store Store, embedder Embedder, minRelevance float64, log *logger.Logger) *Engine {
	return &Engine{
		store:        store,
		embedder:     embedder,
		minRelevance: minRelevance,
		queryCache:   cache.NewLRU[string, []float32](queryCacheSize, queryCacheTTL),
		log:          log,
	}
}

// Search embeds the query and retrieves the topK nearest chunks across both
// corpora, merged by raw cosine distance. A failed query embedding yields an
// empty result, never an error: degraded retrieval is a soft failure.
//
// Merging two independently ranked corpora by distance lets the closest
// items win regardless of origin, even if that starves one corpus entirely.
func (e *Engine) Search(ctx context.Context, query string, topK int) *models.RagSearchResult {
	queryEmbedding, ok := e.queryCache.Get(query)
	if !ok {
		var err error
		queryEmbedding, err = e.embedder.Embed(ctx, query)
		if err != nil {
			e.log.WithError(err).Warn("failed to embed search query")
			return &models.RagSearchResult{}
		}
		e.queryCache.Set(query, queryEmbedding)
	}

	waterResults, err := e.store.SearchWaterObjects(ctx, queryEmbedding, topK)
	if err != nil {
		e.log.WithError(err).Error("water object search failed")
		return &models.RagSearchResult{}
	}

	documentResults, err := e.store.SearchDocuments(ctx, queryEmbedding, topK)
	if err != nil {
		e.log.WithError(err).Error("document search failed")
		return &models.RagSearchResult{}
	}

	merged := append(waterResults, documentResults...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Distance < merged[j].Distance
	})
	if len(merged) > topK {
		merged = merged[:topK]
	}

	var contextBuilder strings.Builder
	sources := make([]models.ChatSource, 0, len(merged))
	seen := make(map[uuid.UUID]struct{})

	for _, result := range merged {
		relevance := roundRelevance(1 - result.Distance)
		if relevance < e.minRelevance {
			continue
		}

		contextBuilder.WriteString(fmt.Sprintf("---\n%s\n\n", result.Content))

		if _, dup := seen[result.SourceID]; dup {
			continue
		}
		seen[result.SourceID] = struct{}{}

		sources = append(sources, models.ChatSource{
			ID:             result.SourceID,
			Name:           result.SourceName,
			Region:         result.SourceRegion,
			Relevance:      relevance,
			ContentSnippet: truncateContent(result.Content),
		})
	}

	e.log.WithPayload(map[string]interface{}{
		"sources":    len(sources),
		"water_hits": len(waterResults),
		"doc_hits":   len(documentResults),
	}).Debug("RAG search completed")

	return &models.RagSearchResult{
		Context: contextBuilder.String(),
		Sources: sources,
	}
}

// IndexedSourceCount reports the number of distinct indexed sources.
func (e *Engine) IndexedSourceCount(ctx context.Context) (int64, error) {
	return e.store.CountIndexedSources(ctx)
}

func roundRelevance(relevance float64) float64 {
	return math.Round(relevance*1000) / 1000
}

func truncateContent(content string) string {
	runes := []rune(content)
	if len(runes) <= maxContentSnippetLength {
		return content
	}
	return string(runes[:maxContentSnippetLength]) + "..."
}
