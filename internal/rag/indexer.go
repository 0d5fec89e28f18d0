package rag

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"hydroatlas/internal/models"
	"hydroatlas/pkg/logger"
)

const (
	// DefaultChunkSize and DefaultChunkOverlap are used when a caller
	// passes non-positive values.
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200

	defaultDocumentContentType = "reference"
)

// Indexer converts source records into embedded chunks and stores them.
// Single-item embedding failures are logged and skipped; an indexing batch
// always runs to completion and reports how many chunks succeeded.
type Indexer struct {
	store     Store
	embedder  Embedder
	provider  WaterObjectProvider
	extractor TextExtractor
	log       *logger.Logger
}

// NewIndexer creates an Indexer.
func NewIndexer(store Store, embedder Embedder, provider WaterObjectProvider, extractor TextExtractor, log *logger.Logger) *Indexer {
	return &Indexer{
		store:     store,
		embedder:  embedder,
		provider:  provider,
		extractor: extractor,
		log:       log,
	}
}

// IndexAllWaterObjects renders, embeds and stores the summary chunk of every
// water object. Existing water-object chunks are fully replaced: the content
// is cheap to regenerate and a full rebuild avoids partial staleness.
func (ix *Indexer) IndexAllWaterObjects(ctx context.Context) (int, error) {
	ix.log.Info("starting indexing of all water objects")

	objects, err := ix.provider.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list water objects: %w", err)
	}

	now := time.Now().UTC()
	chunks := make([]models.WaterObjectEmbedding, 0, len(objects))

	for _, obj := range objects {
		content := WaterObjectSummary(obj, now)

		embedding, err := ix.embedder.Embed(ctx, content)
		if err != nil {
			ix.log.WithError(err).WithPayload(map[string]interface{}{
				"water_object_id": obj.ID.String(),
			}).Warn("failed to index water object")
			continue
		}

		chunks = append(chunks, models.WaterObjectEmbedding{
			WaterObjectID: obj.ID,
			ChunkIndex:    0,
			ContentType:   models.ContentTypeMain,
			Content:       content,
			Embedding:     pgvector.NewVector(embedding),
			CreatedAt:     now,
		})
	}

	if err := ix.store.ReplaceWaterObjectChunks(ctx, chunks); err != nil {
		return 0, err
	}

	ix.log.WithPayload(map[string]interface{}{"count": len(chunks)}).Info("water object indexing complete")
	return len(chunks), nil
}

// IndexPDF extracts the text of the PDF at path, chunks it and indexes each
// chunk as a standalone-document chunk of type "pdf". Returns the number of
// chunks successfully indexed.
func (ix *Indexer) IndexPDF(ctx context.Context, path, documentName string, chunkSize, overlap int) (int, error) {
	ix.log.WithPayload(map[string]interface{}{
		"document": documentName,
		"path":     path,
	}).Info("starting PDF indexing")

	fullText, err := ix.extractor.ExtractText(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("extract text from PDF: %w", err)
	}
	if strings.TrimSpace(fullText) == "" {
		ix.log.Warn("no text extracted from PDF")
		return 0, nil
	}

	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap <= 0 {
		overlap = DefaultChunkOverlap
	}

	chunks := SplitText(fullText, chunkSize, overlap)
	return ix.indexDocumentChunks(ctx, chunks, documentName, filepath.Base(path), "pdf")
}

// IndexText chunks and indexes arbitrary text as standalone-document chunks.
// An empty contentType defaults to "reference".
func (ix *Indexer) IndexText(ctx context.Context, content, documentName, contentType string) (int, error) {
	if strings.TrimSpace(content) == "" {
		return 0, nil
	}
	if contentType == "" {
		contentType = defaultDocumentContentType
	}

	chunks := SplitText(content, DefaultChunkSize, DefaultChunkOverlap)
	return ix.indexDocumentChunks(ctx, chunks, documentName, "", contentType)
}

// ClearIndex removes indexed chunks with the store's tri-state semantics:
// empty contentType wipes everything, "main" wipes only water-object chunks,
// any other value wipes document chunks of that type.
func (ix *Indexer) ClearIndex(ctx context.Context, contentType string) error {
	return ix.store.Clear(ctx, contentType)
}

func (ix *Indexer) indexDocumentChunks(ctx context.Context, chunks []string, documentName, fileName, contentType string) (int, error) {
	now := time.Now().UTC()
	entities := make([]models.DocumentEmbedding, 0, len(chunks))

	for i, chunk := range chunks {
		// Prefix the document name so the embedding captures document
		// identity, not just the chunk text.
		chunkWithContext := fmt.Sprintf("Документ: %s\n\n%s", documentName, chunk)

		embedding, err := ix.embedder.Embed(ctx, chunkWithContext)
		if err != nil {
			ix.log.WithError(err).WithPayload(map[string]interface{}{
				"document": documentName,
				"chunk":    i,
			}).Warn("failed to index document chunk")
			continue
		}

		entities = append(entities, models.DocumentEmbedding{
			ID:           uuid.New(),
			DocumentName: documentName,
			FileName:     fileName,
			ChunkIndex:   i,
			ContentType:  contentType,
			Content:      chunkWithContext,
			Embedding:    pgvector.NewVector(embedding),
			CreatedAt:    now,
		})
	}

	if err := ix.store.InsertDocumentChunks(ctx, entities); err != nil {
		return 0, err
	}

	ix.log.WithPayload(map[string]interface{}{
		"document": documentName,
		"indexed":  len(entities),
		"total":    len(chunks),
	}).Info("document indexing complete")

	return len(entities), nil
}
