package rag

import (
	"context"

	"hydroatlas/internal/models"
)

// Embedder turns text into fixed-length vectors via an external model.
type Embedder interface {
	// Embed returns the vector for text, or an error the caller should
	// treat as "skip this item".
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds texts sequentially, dropping failed items.
	EmbedBatch(ctx context.Context, texts []string) [][]float32
	// IsAvailable reports whether the embedding model is loaded on the
	// backing service.
	IsAvailable(ctx context.Context) bool
}

// Store persists chunk vectors and answers nearest-neighbor queries by
// cosine distance.
type Store interface {
	// ReplaceWaterObjectChunks deletes every existing water-object chunk
	// and inserts the given ones. Re-indexing is a full replace so no
	// stale chunks survive.
	ReplaceWaterObjectChunks(ctx context.Context, chunks []models.WaterObjectEmbedding) error
	// InsertDocumentChunks appends standalone-document chunks.
	InsertDocumentChunks(ctx context.Context, chunks []models.DocumentEmbedding) error
	// SearchWaterObjects returns the topK nearest water-object chunks,
	// each resolved to its owning object's name and region.
	SearchWaterObjects(ctx context.Context, embedding []float32, topK int) ([]models.SearchResultItem, error)
	// SearchDocuments returns the topK nearest standalone-document chunks.
	SearchDocuments(ctx context.Context, embedding []float32, topK int) ([]models.SearchResultItem, error)
	// Clear removes indexed chunks. An empty contentType wipes both
	// corpora, "main" wipes only water-object chunks, any other value
	// wipes document chunks of that type.
	Clear(ctx context.Context, contentType string) error
	// CountIndexedSources counts distinct indexed sources across both
	// corpora (water object ids plus document names).
	CountIndexedSources(ctx context.Context) (int64, error)
}

// WaterObjectProvider lists the structured entities to be indexed.
type WaterObjectProvider interface {
	List(ctx context.Context) ([]models.WaterObject, error)
}

// TextExtractor extracts plain text from a PDF file.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}
